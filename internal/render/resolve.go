package render

import "slices"

// bodyNodeName is the synthetic root of every resolution.
const bodyNodeName = "__match_body"

type resolveNode struct {
	variable *Variable
	deps     []string
}

// ResolveOrder computes the order in which variables must be evaluated.
//
// Locals shadow globals of the same name. A variable depends on its
// DependsOn entries and, when InjectVars is set, on every name referenced
// in its params. A local additionally depends on the local configured just
// before it. The body depends on every local and every name it references.
//
// Only variables reachable from the body are returned; the body itself is
// always evaluated last. Cycles fail with a circular-dependency error and
// references to undefined names fail with a missing-variable error.
func ResolveOrder(body string, locals, globals []Variable) ([]Variable, error) {
	nodes := make(map[string]*resolveNode, len(locals)+len(globals)+1)

	for i := range globals {
		v := globals[i]
		nodes[v.Name] = &resolveNode{variable: &v, deps: variableDeps(v, "")}
	}
	for i := range locals {
		v := locals[i]
		prev := ""
		if i > 0 {
			prev = locals[i-1].Name
		}
		nodes[v.Name] = &resolveNode{variable: &v, deps: variableDeps(v, prev)}
	}

	bodyDeps := make([]string, 0, len(locals))
	for _, v := range locals {
		bodyDeps = appendUnique(bodyDeps, v.Name)
	}
	for _, name := range References(body) {
		bodyDeps = appendUnique(bodyDeps, name)
	}
	nodes[bodyNodeName] = &resolveNode{deps: bodyDeps}

	r := &resolver{
		nodes:    nodes,
		seen:     make(map[string]bool),
		resolved: make(map[string]bool),
	}
	if err := r.resolve(bodyNodeName); err != nil {
		return nil, err
	}
	return r.order, nil
}

func variableDeps(v Variable, predecessor string) []string {
	var deps []string
	if predecessor != "" && predecessor != v.Name {
		deps = appendUnique(deps, predecessor)
	}
	for _, d := range v.DependsOn {
		deps = appendUnique(deps, d)
	}
	if v.InjectVars {
		for _, d := range ParamReferences(v.Params) {
			deps = appendUnique(deps, d)
		}
	}
	return deps
}

func appendUnique(list []string, name string) []string {
	if slices.Contains(list, name) {
		return list
	}
	return append(list, name)
}

type resolver struct {
	nodes    map[string]*resolveNode
	seen     map[string]bool
	resolved map[string]bool
	order    []Variable
}

func (r *resolver) resolve(name string) error {
	n := r.nodes[name]
	r.seen[name] = true

	for _, dep := range n.deps {
		if _, ok := r.nodes[dep]; !ok {
			return NewMissingVariableError(dep)
		}
		if r.resolved[dep] {
			continue
		}
		if r.seen[dep] {
			return NewCircularDependencyError(name, dep)
		}
		if err := r.resolve(dep); err != nil {
			return err
		}
	}

	r.resolved[name] = true
	if n.variable != nil {
		r.order = append(r.order, *n.variable)
	}
	return nil
}
