package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/logging"
)

// Options tune one Render call.
type Options struct {
	// Globals are the global variables visible to the template.
	Globals []Variable
	// Casing re-cases the final body.
	Casing Casing
}

// Renderer evaluates templates with a fixed set of extensions.
type Renderer struct {
	extensions map[string]Extension
	log        zerolog.Logger
}

// NewRenderer creates a renderer with the given extensions.
func NewRenderer(exts ...Extension) *Renderer {
	r := &Renderer{
		extensions: make(map[string]Extension, len(exts)),
		log:        logging.Component("render"),
	}
	for _, ext := range exts {
		r.Register(ext)
	}
	return r
}

// Register adds or replaces an extension.
func (r *Renderer) Register(ext Extension) {
	r.extensions[ext.Name()] = ext
}

// Render evaluates the template's variables in dependency order and
// substitutes them into the body.
func (r *Renderer) Render(ctx context.Context, tpl Template, opts Options) (string, error) {
	order, err := ResolveOrder(tpl.Body, tpl.Vars, opts.Globals)
	if err != nil {
		return "", err
	}

	scope := make(Scope, len(order))
	for _, v := range order {
		ext, ok := r.extensions[v.Type]
		if !ok {
			return "", newUnknownExtensionError(v.Name, v.Type)
		}

		params := v.Params
		if v.InjectVars {
			params = injectParams(params, scope)
		}

		out := ext.Calculate(ctx, scope, params)
		switch out.Status {
		case StatusAborted:
			r.log.Debug().Str("variable", v.Name).Msg("Variable evaluation aborted")
			return "", newAbortedError(v.Name)
		case StatusError:
			return "", newExtensionFailedError(v.Name, out.Err)
		}
		scope[v.Name] = out.Value
	}

	body := Substitute(tpl.Body, scope)
	return ApplyCasing(body, opts.Casing), nil
}

// Substitute replaces every {{name}} and {{name.field}} reference that has a
// value in scope. Unknown references are left untouched.
func Substitute(text string, scope Scope) string {
	return referencePattern.ReplaceAllStringFunc(text, func(ref string) string {
		m := referencePattern.FindStringSubmatch(ref)
		v, ok := scope[m[1]]
		if !ok {
			return ref
		}
		return v.Lookup(m[2])
	})
}

func injectParams(params Params, scope Scope) Params {
	out := make(Params, len(params))
	for k, v := range params {
		out[k] = injectValue(v, scope)
	}
	return out
}

func injectValue(v any, scope Scope) any {
	switch val := v.(type) {
	case string:
		return Substitute(val, scope)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = injectValue(e, scope)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, e := range val {
			out[i] = Substitute(e, scope)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = injectValue(e, scope)
		}
		return out
	}
	return v
}

// scopeEnv exposes evaluated variables to child processes as XPAND_<NAME>.
func scopeEnv(scope Scope) []string {
	env := make([]string, 0, len(scope))
	for name, v := range scope {
		env = append(env, fmt.Sprintf("XPAND_%s=%s", strings.ToUpper(name), v.Text))
		for field, fv := range v.Fields {
			env = append(env, fmt.Sprintf("XPAND_%s_%s=%s", strings.ToUpper(name), strings.ToUpper(field), fv))
		}
	}
	return env
}
