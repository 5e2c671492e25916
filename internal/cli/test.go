package cli

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/xpand/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "mismatch"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against the pipeline",
		Long: `Run YAML scenarios. Each scenario declares its own matches and config
overrides, types a flow of input into a fresh pipeline with a fixed clock
and scripted prompts, and checks assertions on the effects, the final
text, the tray and the journal.

A scenario with a golden file at golden/<name>.golden next to it must
also reproduce that trace exactly. --update rewrites golden files.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  xpand test ./scenarios
  xpand test ./scenarios --filter "undo*"
  xpand test ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	out := opts.formatter(cmd)
	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runScenario(opts, file)
		if !out.JSON() {
			printScenario(out.Writer, sr)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if out.JSON() {
		if err := out.Report(result, result.Failed > 0, "E_TEST_FAILED", msg); err != nil {
			return err
		}
	} else {
		printSummary(out.Writer, result)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files below dir, in lexical
// order. Golden directories are skipped.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario executes one scenario file and checks its golden file.
func runScenario(opts *TestOptions, file string) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}
	fail := func(format string, args ...any) ScenarioResult {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf(format, args...))
		return sr
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail("load error: %v", err)
	}
	sr.Name = scenario.Name

	result, err := harness.Run(scenario)
	if err != nil {
		return fail("execution error: %v", err)
	}
	sr.Pass = result.Pass
	sr.Errors = result.Errors

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return fail("snapshot error: %v", err)
	}
	golden := goldenFilePath(file)

	if opts.Update {
		if err := os.MkdirAll(filepath.Dir(golden), 0o755); err != nil {
			return fail("golden update error: %v", err)
		}
		if err := os.WriteFile(golden, snapshot, 0o644); err != nil {
			return fail("golden update error: %v", err)
		}
		sr.Golden = "updated"
		return sr
	}

	want, err := os.ReadFile(golden)
	switch {
	case os.IsNotExist(err):
		return sr
	case err != nil:
		return fail("golden read error: %v", err)
	case !bytes.Equal(bytes.TrimSpace(want), bytes.TrimSpace(snapshot)):
		sr.Golden = "mismatch"
		return fail("golden file mismatch (run with --update to regenerate)")
	}
	sr.Golden = "match"
	return sr
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func printScenario(w io.Writer, sr ScenarioResult) {
	suffix := ""
	if sr.Golden == "updated" {
		suffix = styleDim.Render(" (golden updated)")
	}
	fmt.Fprintf(w, "%s %s%s\n", mark(sr.Pass), sr.Name, suffix)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func printSummary(w io.Writer, r TestResult) {
	if r.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d passed, %d failed, %d total\n", styleHeading.Render("Test Summary:"), r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		fmt.Fprintf(w, "%s All scenarios passed\n", mark(true))
	}
}
