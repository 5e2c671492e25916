package render

import (
	"context"
	"fmt"
)

// Value is the result of evaluating a variable. Text is what {{name}}
// expands to; Fields back {{name.field}} references (forms).
type Value struct {
	Text   string
	Fields map[string]string
}

// TextValue wraps a plain string.
func TextValue(s string) Value {
	return Value{Text: s}
}

// Lookup returns the text for a reference, with field "" meaning the whole
// value.
func (v Value) Lookup(field string) string {
	if field == "" {
		return v.Text
	}
	return v.Fields[field]
}

// Scope holds the values of already evaluated variables.
type Scope map[string]Value

// Status is the outcome of an extension call.
type Status int

const (
	StatusSuccess Status = iota
	StatusAborted
	StatusError
)

// Output is what an extension returns.
type Output struct {
	Status Status
	Value  Value
	Err    error
}

// Success builds a successful output.
func Success(v Value) Output { return Output{Status: StatusSuccess, Value: v} }

// Aborted builds an output for a user-cancelled interaction.
func Aborted() Output { return Output{Status: StatusAborted} }

// Failure builds an error output.
func Failure(err error) Output { return Output{Status: StatusError, Err: err} }

// Extension computes variable values of one type.
type Extension interface {
	Name() string
	Calculate(ctx context.Context, scope Scope, params Params) Output
}

// stringParam reads an optional string parameter.
func stringParam(params Params, key, fallback string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("param %q must be a string, got %T", key, raw)
	}
	return s, nil
}

// boolParam reads an optional bool parameter.
func boolParam(params Params, key string, fallback bool) (bool, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("param %q must be a bool, got %T", key, raw)
	}
	return b, nil
}

// intParam reads an optional integer parameter.
func intParam(params Params, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("param %q must be an integer, got %v", key, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("param %q must be an integer, got %T", key, raw)
}

// stringListParam reads a list of strings.
func stringListParam(params Params, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch list := raw.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("param %q[%d] must be a string, got %T", key, i, e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("param %q must be a list, got %T", key, raw)
}
