package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaiso/Chaosflow/internal/domain"
)

// ErrInputType — вход stage не приводится к типу адаптера.
var ErrInputType = errors.New("stage input has unexpected type")

// RunContext — данные запуска, доступные адаптеру.
type RunContext struct {
	Namespace  domain.NamespaceID
	ScenarioID domain.ScenarioID
	RunID      domain.RunID

	// Stage — имя выполняемого stage.
	Stage string

	Tags []string

	// PreferredActions — подсказки вызывающего кода (например, "drain", "restart").
	// Адаптер может их учитывать или игнорировать.
	PreferredActions []string
}

// Prefers проверяет, есть ли action среди подсказок.
func (rc RunContext) Prefers(action string) bool {
	for _, a := range rc.PreferredActions {
		if a == action {
			return true
		}
	}
	return false
}

// Adapter — исполняемый обработчик stage.
//
// Адаптер должен проверять ctx.Done() в долгих операциях.
type Adapter interface {
	Execute(ctx context.Context, input any, rc RunContext) Outcome
}

// AdapterFunc позволяет использовать функцию как Adapter.
type AdapterFunc func(ctx context.Context, input any, rc RunContext) Outcome

// Execute вызывает f.
func (f AdapterFunc) Execute(ctx context.Context, input any, rc RunContext) Outcome {
	return f(ctx, input, rc)
}

// Typed оборачивает типизированную функцию в Adapter.
//
// Вход приводится к I напрямую, а если не получилось — через JSON
// (так map[string]any из файла сценария становится структурой).
// Ошибка fn становится Failed.
func Typed[I, O any](fn func(ctx context.Context, input I, rc RunContext) (O, error)) Adapter {
	return AdapterFunc(func(ctx context.Context, input any, rc RunContext) Outcome {
		in, err := convertInput[I](input)
		if err != nil {
			return Failure(err)
		}
		out, err := fn(ctx, in, rc)
		if err != nil {
			return Failure(err)
		}
		return Success(out)
	})
}

func convertInput[I any](input any) (I, error) {
	var result I

	if input == nil {
		return result, nil
	}
	if v, ok := input.(I); ok {
		return v, nil
	}

	data, err := json.Marshal(input)
	if err != nil {
		return result, fmt.Errorf("%w: %T: %v", ErrInputType, input, err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("%w: %T → %T: %v", ErrInputType, input, result, err)
	}
	return result, nil
}
