package adapters

import (
	"errors"
	"fmt"
)

// ErrInvalidInput — вход stage не подходит адаптеру.
var ErrInvalidInput = errors.New("invalid stage input")

// asObject приводит вход stage к map[string]any.
func asObject(kind string, input any) (map[string]any, error) {
	switch v := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s: expected object, got %T", ErrInvalidInput, kind, input)
	}
}

// inputString извлекает строковое значение.
func inputString(in map[string]any, key string) string {
	if s, ok := in[key].(string); ok {
		return s
	}
	return ""
}

// inputInt извлекает числовое значение (YAML даёт int, JSON — float64).
func inputInt(in map[string]any, key string) int {
	switch n := in[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// inputStringMap извлекает map[string]string.
func inputStringMap(in map[string]any, key string) map[string]string {
	switch m := in[key].(type) {
	case map[string]string:
		return m
	case map[string]any:
		result := make(map[string]string, len(m))
		for k, val := range m {
			if s, ok := val.(string); ok {
				result[k] = s
			}
		}
		return result
	}
	return nil
}
