package render

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(vars []Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func TestResolveOrder_SingleDateVariable(t *testing.T) {
	locals := []Variable{{Name: "date_var", Type: "date", Params: Params{"format": "%Y"}}}

	order, err := ResolveOrder("{{date_var}}", locals, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"date_var"}, names(order))
}

func TestResolveOrder_LocalsRunInConfiguredOrder(t *testing.T) {
	locals := []Variable{
		{Name: "c", Type: "echo"},
		{Name: "a", Type: "echo"},
		{Name: "b", Type: "echo"},
	}

	order, err := ResolveOrder("{{b}}", locals, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, names(order))
}

func TestResolveOrder_ExplicitDependencyOnGlobal(t *testing.T) {
	globals := []Variable{{Name: "g", Type: "echo"}, {Name: "unused", Type: "echo"}}
	locals := []Variable{{Name: "a", Type: "echo", DependsOn: []string{"g"}}}

	order, err := ResolveOrder("{{a}}", locals, globals)
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "a"}, names(order), "unreferenced globals are not evaluated")
}

func TestResolveOrder_InjectedReferencesAreDependencies(t *testing.T) {
	globals := []Variable{{Name: "name", Type: "echo"}}
	locals := []Variable{{
		Name:       "greeting",
		Type:       "shell",
		Params:     Params{"cmd": "echo hello {{name}}"},
		InjectVars: true,
	}}

	order, err := ResolveOrder("{{greeting}}", locals, globals)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "greeting"}, names(order))
}

func TestResolveOrder_ReferencesIgnoredWithoutInjection(t *testing.T) {
	locals := []Variable{{
		Name:   "literal",
		Type:   "echo",
		Params: Params{"echo": "{{nowhere}}"},
	}}

	order, err := ResolveOrder("{{literal}}", locals, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"literal"}, names(order))
}

func TestResolveOrder_GlobalReferencedFromBody(t *testing.T) {
	globals := []Variable{{Name: "me", Type: "echo"}}

	order, err := ResolveOrder("Regards, {{me}}", nil, globals)
	require.NoError(t, err)
	assert.Equal(t, []string{"me"}, names(order))
}

func TestResolveOrder_LocalShadowsGlobal(t *testing.T) {
	globals := []Variable{{Name: "x", Type: "echo", Params: Params{"echo": "global"}}}
	locals := []Variable{{Name: "x", Type: "echo", Params: Params{"echo": "local"}}}

	order, err := ResolveOrder("{{x}}", locals, globals)
	require.NoError(t, err)
	require.Len(t, order, 1)
	assert.Equal(t, "local", order[0].Params["echo"])
}

func TestResolveOrder_MutualCycle(t *testing.T) {
	globals := []Variable{
		{Name: "A", Type: "echo", DependsOn: []string{"B"}},
		{Name: "B", Type: "echo", DependsOn: []string{"A"}},
	}

	_, err := ResolveOrder("{{A}}", nil, globals)
	require.Error(t, err)
	assert.True(t, IsCircularDependency(err))

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "B", re.Node)
	assert.Equal(t, "A", re.Dependency)
}

func TestResolveOrder_SelfReferenceThroughInjection(t *testing.T) {
	locals := []Variable{{
		Name:       "loop",
		Type:       "echo",
		Params:     Params{"echo": "{{loop}}"},
		InjectVars: true,
	}}

	_, err := ResolveOrder("{{loop}}", locals, nil)
	require.Error(t, err)
	assert.True(t, IsCircularDependency(err))
}

func TestResolveOrder_LocalDependingOnLaterLocalCycles(t *testing.T) {
	// b implicitly depends on a; a depending on b closes the loop.
	locals := []Variable{
		{Name: "a", Type: "echo", DependsOn: []string{"b"}},
		{Name: "b", Type: "echo"},
	}

	_, err := ResolveOrder("", locals, nil)
	assert.True(t, IsCircularDependency(err))
}

func TestResolveOrder_MissingVariable(t *testing.T) {
	_, err := ResolveOrder("Hi {{ghost}}", nil, nil)
	require.Error(t, err)
	assert.True(t, IsMissingVariable(err))

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "ghost", re.Variable)

	locals := []Variable{{Name: "a", Type: "echo", DependsOn: []string{"nope"}}}
	_, err = ResolveOrder("{{a}}", locals, nil)
	assert.True(t, IsMissingVariable(err))
}

func TestResolveOrder_FieldReferencesUseBaseName(t *testing.T) {
	locals := []Variable{{Name: "form1", Type: "form"}}

	order, err := ResolveOrder("{{form1.name}} and {{ form1.age }}", locals, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"form1"}, names(order))
}

func TestResolveOrder_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1717)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	buildGlobals := func(edges []int) []Variable {
		vars := make([]Variable, len(edges))
		for i, e := range edges {
			vars[i] = Variable{Name: fmt.Sprintf("v%d", i), Type: "echo"}
			if i > 0 {
				vars[i].DependsOn = []string{fmt.Sprintf("v%d", e%i)}
			}
		}
		return vars
	}
	bodyFor := func(vars []Variable) string {
		body := ""
		for _, v := range vars {
			body += "{{" + v.Name + "}}"
		}
		return body
	}

	// Property: resolving twice gives the same order
	properties.Property("idempotence", prop.ForAll(
		func(edges []int) bool {
			globals := buildGlobals(edges)
			first, err1 := ResolveOrder(bodyFor(globals), nil, globals)
			second, err2 := ResolveOrder(bodyFor(globals), nil, globals)
			return err1 == nil && err2 == nil && reflect.DeepEqual(names(first), names(second))
		},
		gen.SliceOfN(12, gen.IntRange(0, 1000)),
	))

	// Property: every dependency precedes its dependent
	properties.Property("order respects edges", prop.ForAll(
		func(edges []int) bool {
			globals := buildGlobals(edges)
			order, err := ResolveOrder(bodyFor(globals), nil, globals)
			if err != nil || len(order) != len(globals) {
				return false
			}
			pos := make(map[string]int)
			for i, v := range order {
				pos[v.Name] = i
			}
			for _, v := range globals {
				for _, d := range v.DependsOn {
					if pos[d] >= pos[v.Name] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
