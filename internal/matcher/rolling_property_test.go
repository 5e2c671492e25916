package matcher

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/xpand/internal/event"
)

func propertyTriggers() []RollingMatch {
	return []RollingMatch{
		wordTrigger(1, ":ab"),
		plainTrigger(2, "ba"),
		plainTrigger(3, "abc"),
		{ID: 4, Items: TriggerItems("Ca", TriggerOptions{CaseInsensitive: true})},
		plainTrigger(5, "ba"),
	}
}

func TestRollingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Property: replaying the same sequence yields identical results
	properties.Property("determinism", prop.ForAll(
		func(typed string) bool {
			m := NewRolling(propertyTriggers(), RollingOptions{})
			_, first := typeText(m, nil, typed)
			_, second := typeText(m, nil, typed)
			return reflect.DeepEqual(first, second)
		},
		gen.RegexMatch(`[abcC: .]{0,60}`),
	))

	// Property: active paths never exceed the trie size
	properties.Property("state is bounded by trigger set", prop.ForAll(
		func(typed string) bool {
			m := NewRolling(propertyTriggers(), RollingOptions{})
			var state State
			for _, r := range typed {
				state, _ = m.Process(state, KeyEvent(event.KeyOther, string(r)))
				if state.(*RollingState).Len() > m.NodeCount() {
					return false
				}
			}
			return true
		},
		gen.RegexMatch(`[abcC: .]{0,200}`),
	))

	// Property: a left_word trigger never fires right after a word character
	properties.Property("left word boundary", prop.ForAll(
		func(prefix string) bool {
			m := NewRolling([]RollingMatch{{ID: 1, Items: TriggerItems("ab", TriggerOptions{LeftWord: true})}}, RollingOptions{})
			state, _ := typeText(m, nil, prefix)
			_, results := typeText(m, state, "xab")
			return len(results) == 0
		},
		gen.RegexMatch(`[a-z .]{0,20}`),
	))

	properties.TestingRun(t)
}
