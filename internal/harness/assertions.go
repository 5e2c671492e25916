package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/xpand/internal/engine"
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/journal"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] #%d %s <- %s %v\n", i+1, ev.Seq, ev.Kind, ev.Input, ev.Payload)
		}
	}
	return buf.String()
}

// assertEffectContains checks that some trace event of the kind carries
// the expected fields (subset match).
func assertEffectContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if ev.Kind == a.Kind && matchFields(ev.Payload, a.Fields) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEffectContains,
		Expected: fmt.Sprintf("%s with fields %v", a.Kind, a.Fields),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEffectOrder checks that the kinds appear in order. Intervening
// events are allowed.
func assertEffectOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Kinds) && ev.Kind == a.Kinds[next] {
			next++
		}
	}
	if next == len(a.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEffectOrder,
		Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
		Actual:   fmt.Sprintf("%s not found after %v", a.Kinds[next], a.Kinds[:next]),
		Trace:    trace,
	}
}

// assertEffectCount checks that the kind appears exactly Count times.
func assertEffectCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Kind == a.Kind {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEffectCount,
		Expected: fmt.Sprintf("%s exactly %d times", a.Kind, a.Count),
		Actual:   fmt.Sprintf("found %d times", count),
		Trace:    trace,
	}
}

func assertScreen(result *Result, a Assertion) error {
	if result.Screen == a.Text {
		return nil
	}
	return &AssertionError{
		Type:     AssertScreen,
		Expected: fmt.Sprintf("%q", a.Text),
		Actual:   fmt.Sprintf("%q", result.Screen),
	}
}

func assertUIContains(result *Result, a Assertion) error {
	for _, line := range result.UI {
		if strings.Contains(line, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertUIContains,
		Expected: fmt.Sprintf("a line containing %q", a.Text),
		Actual:   fmt.Sprintf("%q", result.UI),
	}
}

// assertJournalCount counts recorded outputs of the kind.
func assertJournalCount(actx *AssertionContext, a Assertion) error {
	entries, err := actx.Journal.Entries(actx.Ctx, actx.SessionID)
	if err != nil {
		return fmt.Errorf("journal_count: %w", err)
	}
	count := 0
	for _, e := range entries {
		for _, out := range e.Outputs {
			if string(out.Kind()) == a.Kind {
				count++
			}
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertJournalCount,
		Expected: fmt.Sprintf("%s recorded exactly %d times", a.Kind, a.Count),
		Actual:   fmt.Sprintf("recorded %d times over %d inputs", count, len(entries)),
	}
}

func assertReplayIdentical(actx *AssertionContext) error {
	res, err := actx.Replay(actx.Ctx)
	if err != nil {
		return fmt.Errorf("replay_identical: %w", err)
	}
	if res.Identical() {
		return nil
	}
	d := res.Divergences[0]
	return &AssertionError{
		Type:     AssertReplayIdentical,
		Expected: fmt.Sprintf("%d inputs replayed identically", res.Inputs),
		Actual: fmt.Sprintf("%d divergences, first at input %d (%s): recorded %s, replayed %s",
			len(res.Divergences), d.Seq, d.Input.Kind(), kindsOf(d.Recorded), kindsOf(d.Replayed)),
	}
}

func kindsOf(events []event.Event) []event.Kind {
	kinds := make([]event.Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind()
	}
	return kinds
}

// matchFields checks if actual contains all expected fields (subset
// match). Extra fields in actual are ignored.
func matchFields(actual, expected map[string]any) bool {
	for k, want := range expected {
		got, ok := actual[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares a decoded payload value with a YAML value. Scalars
// compare by their printed form, so json.Number(3) equals int 3.
func valuesEqual(actual, expected any) bool {
	switch want := expected.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		return ok && len(got) == len(want) && matchFields(got, want)
	case []any:
		got, ok := actual.([]any)
		if !ok || len(got) != len(want) {
			return false
		}
		for i := range want {
			if !valuesEqual(got[i], want[i]) {
				return false
			}
		}
		return true
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	return fmt.Sprint(actual) == fmt.Sprint(expected)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx       context.Context
	Journal   *journal.Journal
	SessionID string
	Replay    func(ctx context.Context) (engine.ReplayResult, error)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertEffectContains:
			err = assertEffectContains(result.Trace, a)
		case AssertEffectOrder:
			err = assertEffectOrder(result.Trace, a)
		case AssertEffectCount:
			err = assertEffectCount(result.Trace, a)
		case AssertScreen:
			err = assertScreen(result, a)
		case AssertUIContains:
			err = assertUIContains(result, a)
		case AssertJournalCount:
			if actx == nil || actx.Journal == nil {
				err = fmt.Errorf("journal_count requires a journal")
				break
			}
			err = assertJournalCount(actx, a)
		case AssertReplayIdentical:
			if actx == nil || actx.Replay == nil {
				err = fmt.Errorf("replay_identical requires a replay")
				break
			}
			err = assertReplayIdentical(actx)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
