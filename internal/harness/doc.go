// Package harness runs YAML conformance scenarios against a real engine.
//
// A scenario declares match files, configuration overrides and a flow of
// user input: typed text, key presses, clicks, hotkeys and tray requests.
// The harness feeds the flow through the assembled processor and
// dispatcher, with deterministic stand-ins for the platform:
//
//   - a console.Screen receives both the echoed keys and the injections
//   - a console.Clipboard seeded from the scenario
//   - a testutil.ScriptedSelector answering selections and choices
//   - a testutil.DeterministicClock moved only by wait steps
//   - an in-memory journal recording every pass
//
// Assertions then check the resulting trace, screen, UI lines and journal,
// and can replay the journal through a fresh processor.
//
// Golden traces live in testdata/golden/<name>.golden. To regenerate them:
//
//	go test ./internal/harness -update
package harness
