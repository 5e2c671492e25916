package match

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/xpand/internal/render"
)

// Warning kinds.
const (
	WarningGlobalCycle  = "global_cycle"
	WarningRender       = "render"
	WarningInvalidRegex = "invalid_regex"
)

// Warning is a problem that does not stop loading. Matches with warnings
// still load; they fail (or never fire) when used.
type Warning struct {
	Kind    string   `json:"kind"`
	MatchID int32    `json:"match_id,omitempty"`
	Path    []string `json:"path,omitempty"`
	Message string   `json:"message"`
}

// Analyze reports global variable cycles, matches whose variables cannot be
// ordered and regex patterns that do not compile.
func Analyze(s *Store) []Warning {
	warnings := globalCycles(s.GlobalVars())

	for _, m := range s.Matches() {
		if m.Regex != "" {
			if _, err := regexp.Compile(m.Regex); err != nil {
				warnings = append(warnings, Warning{
					Kind:    WarningInvalidRegex,
					MatchID: m.ID,
					Message: fmt.Sprintf("%s: %v", m.Description(), err),
				})
				continue
			}
		}
		if m.IsImage() {
			continue
		}
		tpl := m.Template(regexCaptures(m.Regex))
		if _, err := render.ResolveOrder(tpl.Body, tpl.Vars, s.GlobalVars()); err != nil {
			warnings = append(warnings, Warning{
				Kind:    WarningRender,
				MatchID: m.ID,
				Message: fmt.Sprintf("%s: %v", m.Description(), err),
			})
		}
	}
	return warnings
}

// regexCaptures returns placeholder args for the named groups of pattern.
func regexCaptures(pattern string) map[string]string {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	args := make(map[string]string)
	for _, name := range re.SubexpNames() {
		if name != "" {
			args[name] = ""
		}
	}
	return args
}

// dependencyGraph maps a global variable to the globals it reads.
type dependencyGraph map[string][]string

func buildDependencyGraph(globals []render.Variable) dependencyGraph {
	graph := make(dependencyGraph, len(globals))
	known := make(map[string]bool, len(globals))
	for _, v := range globals {
		known[v.Name] = true
	}
	for _, v := range globals {
		if graph[v.Name] == nil {
			graph[v.Name] = []string{}
		}
		deps := slices.Clone(v.DependsOn)
		if v.InjectVars {
			deps = append(deps, render.ParamReferences(v.Params)...)
		}
		for _, d := range deps {
			if known[d] && !slices.Contains(graph[v.Name], d) {
				graph[v.Name] = append(graph[v.Name], d)
			}
		}
	}
	return graph
}

// globalCycles finds strongly connected components among global variables.
// Every component with more than one variable, or a variable reading
// itself, is reported once.
func globalCycles(globals []render.Variable) []Warning {
	if len(globals) == 0 {
		return nil
	}
	graph := buildDependencyGraph(globals)

	var warnings []Warning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		path := cyclePath(scc, graph)
		warnings = append(warnings, Warning{
			Kind:    WarningGlobalCycle,
			Path:    path,
			Message: fmt.Sprintf("global variables depend on each other: %s", strings.Join(path, " -> ")),
		})
	}
	return warnings
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the output is stable.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// cyclePath walks edges inside the component from its first member until
// it returns to the start.
func cyclePath(scc []string, graph dependencyGraph) []string {
	start := scc[0]
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	path := []string{start}
	visited := map[string]bool{}
	current := start
	for {
		visited[current] = true
		next := ""
		for _, n := range graph[current] {
			if members[n] && (!visited[n] || n == start) {
				next = n
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		current = next
	}
}
