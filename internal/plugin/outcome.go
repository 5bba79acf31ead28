package plugin

import "errors"

// ErrAdapterFailed — адаптер вернул Failure без ошибки.
var ErrAdapterFailed = errors.New("adapter failed")

// Outcome — результат выполнения адаптера: Succeeded или Failed.
type Outcome interface {
	isOutcome()
}

// Succeeded — успешный результат с выходом stage.
type Succeeded struct {
	Output any
}

// Failed — неуспешный результат.
type Failed struct {
	Err error
}

func (Succeeded) isOutcome() {}
func (Failed) isOutcome()    {}

// Error возвращает текст ошибки.
func (f Failed) Error() string {
	if f.Err == nil {
		return ErrAdapterFailed.Error()
	}
	return f.Err.Error()
}

// Success создаёт успешный Outcome.
func Success(output any) Outcome {
	return Succeeded{Output: output}
}

// Failure создаёт неуспешный Outcome. nil заменяется на ErrAdapterFailed.
func Failure(err error) Outcome {
	if err == nil {
		err = ErrAdapterFailed
	}
	return Failed{Err: err}
}

// FromResult превращает пару (output, err) в Outcome.
func FromResult(output any, err error) Outcome {
	if err != nil {
		return Failure(err)
	}
	return Success(output)
}
