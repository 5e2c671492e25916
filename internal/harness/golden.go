package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/xpand/internal/event"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Screen       string
	UI           []string
}

// toCanonicalMap converts a TraceSnapshot to plain values accepted by
// event.MarshalCanonical.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":   ev.Seq,
			"input": ev.Input,
			"kind":  ev.Kind,
		}
		if ev.Payload != nil {
			m["payload"] = ev.Payload
		}
		traceList[i] = m
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"screen":        s.Screen,
	}
	if len(s.UI) > 0 {
		result["ui"] = s.UI
	}
	return result
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden. Assertion failures are reported
// through t as well.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}

// Snapshot returns the canonical JSON a golden file holds for result.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Screen:       result.Screen,
		UI:           result.UI,
	}
	return event.MarshalCanonical(snapshot.toCanonicalMap())
}
