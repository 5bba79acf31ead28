package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// Ошибки рендеринга шаблонов.
var (
	ErrTemplateParse  = errors.New("template parse failed")
	ErrTemplateRender = errors.New("template render failed")
)

// TemplateData — данные, доступные в шаблонах stage input/example:
//
//	{{ .Vars.target_url }}
//	{{ .Env.HOME }}
//	{{ .Scenario.ID }}
type TemplateData struct {
	Vars     map[string]any
	Env      map[string]string
	Scenario struct {
		Namespace string
		ID        string
	}
}

// newTemplateData собирает данные для рендеринга: vars файла,
// поверх них overrides, переменные окружения процесса.
func newTemplateData(f *File, overrides map[string]any) *TemplateData {
	data := &TemplateData{
		Vars: make(map[string]any, len(f.Vars)+len(overrides)),
		Env:  environ(),
	}
	for k, v := range f.Vars {
		data.Vars[k] = v
	}
	for k, v := range overrides {
		data.Vars[k] = v
	}
	data.Scenario.Namespace = f.Namespace
	data.Scenario.ID = f.ID
	return data
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

var templateFuncs = template.FuncMap{
	// default — значение по умолчанию для пустого аргумента
	"default": func(def, val any) any {
		if val == nil {
			return def
		}
		if s, ok := val.(string); ok && s == "" {
			return def
		}
		return val
	},

	// toJSON — сериализует значение в JSON строку
	"toJSON": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	},

	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"replace": strings.ReplaceAll,
}

// Render рендерит строковый шаблон. Строки без "{{" возвращаются как есть.
// Обращение к несуществующему ключу — ошибка.
func Render(tmpl string, data *TemplateData) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Funcs(templateFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// RenderValue рекурсивно рендерит строки внутри map и slice.
func RenderValue(value any, data *TemplateData) (any, error) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "{{") {
			return v, nil
		}
		rendered, err := Render(v, data)
		if err != nil {
			return nil, err
		}
		return parseRendered(rendered), nil

	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			rendered, err := RenderValue(val, data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			result[key] = rendered
		}
		return result, nil

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			rendered, err := RenderValue(val, data)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			result[i] = rendered
		}
		return result, nil

	default:
		// int, float, bool, nil
		return value, nil
	}
}

// parseRendered возвращает результат шаблона как JSON значение
// (объект, массив, число, bool), если он им является, иначе строку.
func parseRendered(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}

	switch trimmed[0] {
	case '{', '[':
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
		return value
	}

	if trimmed == "true" {
		return true
	}
	if trimmed == "false" {
		return false
	}

	var num json.Number
	if err := json.Unmarshal([]byte(trimmed), &num); err == nil {
		if i, err := num.Int64(); err == nil {
			return i
		}
		if f, err := num.Float64(); err == nil {
			return f
		}
	}

	return value
}

// Render рендерит input и example всех stages.
func (f *File) Render(overrides map[string]any) error {
	data := newTemplateData(f, overrides)

	for i := range f.Stages {
		st := &f.Stages[i]

		input, err := RenderValue(st.Input, data)
		if err != nil {
			return newValidationError(st.Name, "input", err.Error(), err)
		}
		example, err := RenderValue(st.Example, data)
		if err != nil {
			return newValidationError(st.Name, "example", err.Error(), err)
		}

		st.Input, st.Example = input, example
	}

	return nil
}
