package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/xpand/internal/match"
)

// ValidationIssue is one load error.
type ValidationIssue struct {
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Dir      string            `json:"dir"`
	Files    int               `json:"files"`
	Matches  int               `json:"matches"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []match.Warning   `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [match-dir]",
		Short: "Check match files without expanding anything",
		Long: `Load every match file, check it against the match schema and report
errors and warnings. All files are checked; loading does not stop at the
first error.

Warnings do not fail validation: global variables that depend on each
other in a cycle, variables a match cannot order, and regex triggers
that do not compile.

Exit codes:
  0 - Matches are valid (warnings allowed)
  1 - One or more files have errors
  2 - Command error (directory not found, no match files)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if dir == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.Paths.Matches
	}

	loader, err := match.NewLoader(afero.NewOsFs())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build match schema", err)
	}
	result, loadErrs := loader.Load(dir, match.LoadModeCollectAll)

	// Without a result nothing could be read at all.
	if result == nil {
		issue := toIssue(loadErrs[0])
		if err := formatter.Error(issue.Code, issue.Message, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, issue.Message)
	}

	vr := ValidationResult{
		Valid:    len(loadErrs) == 0,
		Dir:      dir,
		Files:    len(result.Files),
		Matches:  result.Store.Len(),
		Warnings: result.Warnings,
	}
	for _, err := range loadErrs {
		vr.Errors = append(vr.Errors, toIssue(err))
	}
	formatter.VerboseLog("Found %d match file(s) in %s", vr.Files, dir)

	if formatter.JSON() {
		if err := formatter.Report(vr, !vr.Valid, match.ErrCodeInvalidMatch, fmt.Sprintf("%d error(s)", len(vr.Errors))); err != nil {
			return err
		}
	} else {
		printValidation(formatter, vr)
	}

	if !vr.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d error(s) in %s", len(vr.Errors), dir))
	}
	return nil
}

func toIssue(err error) ValidationIssue {
	var loadErr *match.LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, loadErr.Err)
		}
		return ValidationIssue{Code: loadErr.Code, File: loadErr.File, Message: msg}
	}
	return ValidationIssue{Code: match.ErrCodeGeneric, Message: err.Error()}
}

func printValidation(f *OutputFormatter, vr ValidationResult) {
	w := f.Writer
	for _, e := range vr.Errors {
		loc := e.File
		if loc == "" {
			loc = vr.Dir
		}
		fmt.Fprintf(w, "%s %s [%s] %s\n", mark(false), loc, e.Code, e.Message)
	}
	for _, warn := range vr.Warnings {
		fmt.Fprintf(w, "%s %s: %s\n", styleWarn.Render("!"), warn.Kind, warn.Message)
	}
	if vr.Valid {
		fmt.Fprintf(w, "%s %d match(es) in %d file(s)\n", mark(true), vr.Matches, vr.Files)
	}
}
