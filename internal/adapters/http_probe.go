package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Chaosflow/internal/plugin"
)

const (
	// KindHTTPProbe — kind адаптера HTTP проверки.
	KindHTTPProbe = "http-probe"

	// HeaderRunID — заголовок с ID run в запросах проверки.
	HeaderRunID = "X-Chaos-Run-Id"

	defaultProbeTimeout = 5 * time.Second
	maxProbeBody        = 64 * 1024
)

// ProbeError — сервис ответил неожиданным статусом.
type ProbeError struct {
	URL        string
	StatusCode int
	Expected   int
}

// Error реализует интерфейс error.
func (e *ProbeError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("probe %s: unhealthy status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("probe %s: status %d, expected %d", e.URL, e.StatusCode, e.Expected)
}

// HTTPProbe — адаптер HTTP проверки сервиса.
type HTTPProbe struct {
	client *http.Client
}

// NewHTTPProbe создаёт HTTPProbe. nil client — http.Client по умолчанию.
func NewHTTPProbe(client *http.Client) *HTTPProbe {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPProbe{client: client}
}

type probeConfig struct {
	Method       string
	URL          string
	Headers      map[string]string
	ExpectStatus int
	Timeout      time.Duration
}

// Execute выполняет HTTP запрос и сверяет статус.
func (p *HTTPProbe) Execute(ctx context.Context, input any, rc plugin.RunContext) plugin.Outcome {
	in, err := asObject(KindHTTPProbe, input)
	if err != nil {
		return plugin.Failure(err)
	}

	cfg, err := parseProbeConfig(in)
	if err != nil {
		return plugin.Failure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, nil)
	if err != nil {
		return plugin.Failure(fmt.Errorf("build request: %w", err))
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if rc.RunID != "" {
		req.Header.Set(HeaderRunID, rc.RunID.String())
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return plugin.Failure(fmt.Errorf("probe %s: %w", cfg.URL, err))
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return plugin.Failure(fmt.Errorf("read probe body: %w", err))
	}

	if !statusMatches(resp.StatusCode, cfg.ExpectStatus) {
		return plugin.Failure(&ProbeError{
			URL:        cfg.URL,
			StatusCode: resp.StatusCode,
			Expected:   cfg.ExpectStatus,
		})
	}

	return plugin.Success(map[string]any{
		"status_code": resp.StatusCode,
		"latency_ms":  latency.Milliseconds(),
		"body":        string(body),
	})
}

func parseProbeConfig(in map[string]any) (*probeConfig, error) {
	cfg := &probeConfig{
		Method:       strings.ToUpper(inputString(in, "method")),
		URL:          inputString(in, "url"),
		Headers:      inputStringMap(in, "headers"),
		ExpectStatus: inputInt(in, "expect_status"),
		Timeout:      defaultProbeTimeout,
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidInput, KindHTTPProbe)
	}
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	if ms := inputInt(in, "timeout_ms"); ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}

// statusMatches: при expected == 0 подходит любой 2xx/3xx.
func statusMatches(got, expected int) bool {
	if expected == 0 {
		return got >= 200 && got < 400
	}
	return got == expected
}
