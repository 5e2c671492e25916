package render

import (
	"regexp"
	"slices"
	"sort"
)

// Params are the extension parameters of a variable, as decoded from the
// match file.
type Params map[string]any

// Variable is a named value computed by an extension.
type Variable struct {
	Name      string
	Type      string
	Params    Params
	DependsOn []string
	// InjectVars makes every reference inside Params both a dependency and
	// a substitution target.
	InjectVars bool
}

// Template is a body plus its local variables in configured order.
type Template struct {
	Body string
	Vars []Variable
}

var referencePattern = regexp.MustCompile(`\{\{\s*(\w+)(?:\.(\w+))?\s*\}\}`)

// References returns the variable names referenced in text, in order of
// first appearance.
func References(text string) []string {
	var names []string
	for _, m := range referencePattern.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// ParamReferences returns the variable names referenced anywhere inside
// params, walking nested lists and maps in a stable order.
func ParamReferences(params Params) []string {
	var names []string
	add := func(text string) {
		for _, n := range References(text) {
			if !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
	}

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			add(val)
		case []any:
			for _, e := range val {
				walk(e)
			}
		case []string:
			for _, e := range val {
				add(e)
			}
		case map[string]any:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(val[k])
			}
		case Params:
			walk(map[string]any(val))
		}
	}
	walk(map[string]any(params))
	return names
}

// CaptureVars turns regex captures into echo variables so the body can
// reference them like any other variable.
func CaptureVars(args map[string]string) []Variable {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		vars = append(vars, Variable{
			Name:   name,
			Type:   "echo",
			Params: Params{"echo": args[name]},
		})
	}
	return vars
}
