package render

import (
	"context"
	"errors"
	"fmt"
)

// Chooser shows a blocking list selection. It returns the chosen index, or
// ok=false when the user cancelled.
type Chooser interface {
	Choose(ctx context.Context, labels []string) (index int, ok bool, err error)
}

// Choice lets the user pick among "values". Each value is either a string
// or a map with "label" and "id"; the id (or the string) is the result.
type Choice struct {
	Chooser Chooser
}

func (Choice) Name() string { return "choice" }

func (c Choice) Calculate(ctx context.Context, _ Scope, params Params) Output {
	if c.Chooser == nil {
		return Failure(errors.New("no chooser available"))
	}

	raw, ok := params["values"].([]any)
	if !ok || len(raw) == 0 {
		return Failure(errors.New("choice requires values"))
	}

	labels := make([]string, 0, len(raw))
	ids := make([]string, 0, len(raw))
	for i, v := range raw {
		switch val := v.(type) {
		case string:
			labels = append(labels, val)
			ids = append(ids, val)
		case map[string]any:
			label, _ := val["label"].(string)
			id, _ := val["id"].(string)
			if label == "" {
				label = id
			}
			if id == "" {
				id = label
			}
			labels = append(labels, label)
			ids = append(ids, id)
		default:
			return Failure(fmt.Errorf("values[%d] has unsupported type %T", i, v))
		}
	}

	idx, ok, err := c.Chooser.Choose(ctx, labels)
	if err != nil {
		return Failure(err)
	}
	if !ok || idx < 0 || idx >= len(ids) {
		return Aborted()
	}
	return Success(TextValue(ids[idx]))
}

// FormRenderer shows a blocking form. It returns the field values, or
// ok=false when the user cancelled.
type FormRenderer interface {
	ShowForm(ctx context.Context, layout string, fields map[string]any) (values map[string]string, ok bool, err error)
}

// Form collects several values at once; the body references them as
// {{name.field}}.
type Form struct {
	Renderer FormRenderer
}

func (Form) Name() string { return "form" }

func (f Form) Calculate(ctx context.Context, _ Scope, params Params) Output {
	if f.Renderer == nil {
		return Failure(errors.New("no form renderer available"))
	}
	layout, err := stringParam(params, "layout", "")
	if err != nil {
		return Failure(err)
	}
	fields, _ := params["fields"].(map[string]any)

	values, ok, err := f.Renderer.ShowForm(ctx, layout, fields)
	if err != nil {
		return Failure(err)
	}
	if !ok {
		return Aborted()
	}
	return Success(Value{Text: Substitute(layout, formScope(values)), Fields: values})
}

func formScope(values map[string]string) Scope {
	scope := make(Scope, len(values))
	for k, v := range values {
		scope[k] = TextValue(v)
	}
	return scope
}
