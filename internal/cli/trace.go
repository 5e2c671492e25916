package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/xpand/internal/process"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	SimulationOptions
	All bool // include stages that passed the event through unchanged
}

// StepRecord is one stage invocation.
type StepRecord struct {
	Input int    `json:"input"` // 1-based index of the typed input
	Pass  int    `json:"pass"`  // queue pass within the input
	Stage string `json:"stage"`
	In    string `json:"in"`
	Out   string `json:"out"`
	InID  uint32 `json:"in_source_id"`
	OutID uint32 `json:"out_source_id"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Stages  []string       `json:"stages"`
	Steps   []StepRecord   `json:"steps"`
	Effects []EffectRecord `json:"effects"`
	Screen  string         `json:"screen"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{SimulationOptions: SimulationOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "trace <text>",
		Short: "Show how typed text moves through the pipeline stages",
		Long: `Type text into the pipeline like expand does, and show every stage
that changed an event on its way through. Use --all to include stages
that passed events through unchanged.

Example:
  xpand trace ":date "
  xpand trace --all --format json "x"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.All, "all", false, "include unchanged steps")

	return cmd
}

func runTrace(opts *TraceOptions, text string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	var (
		first string
		input int
		steps = []StepRecord{}
	)
	observe := func(s process.Step) {
		if s.Pass == 1 && s.Stage == first {
			input++
		}
		if !opts.All && s.In.Kind() == s.Out.Kind() && s.In.SourceID == s.Out.SourceID {
			return
		}
		steps = append(steps, StepRecord{
			Input: input,
			Pass:  s.Pass,
			Stage: s.Stage,
			In:    string(s.In.Kind()),
			Out:   string(s.Out.Kind()),
			InID:  uint32(s.In.SourceID),
			OutID: uint32(s.Out.SourceID),
		})
	}

	sim, err := newSimulation(cfg, &opts.SimulationOptions, cmd.ErrOrStderr(), process.WithStepObserver(observe))
	if err != nil {
		return err
	}
	stages := sim.app.Processor.Stages()
	if len(stages) > 0 {
		first = stages[0]
	}

	effects, _, err := sim.typeText(cmd.Context(), text)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to simulate input", err)
	}
	result := TraceResult{
		Stages:  stages,
		Steps:   steps,
		Effects: effects,
		Screen:  sim.screen.String(),
	}

	out := opts.formatter(cmd)
	if out.JSON() {
		return out.Success(result)
	}

	w := cmd.OutOrStdout()
	last := 0
	for _, s := range result.Steps {
		if s.Input != last {
			fmt.Fprintln(w, styleHeading.Render(fmt.Sprintf("input %d", s.Input)))
			last = s.Input
		}
		fmt.Fprintf(w, "  %s %-18s %s -> %s\n", styleDim.Render(fmt.Sprintf("pass %d", s.Pass)), s.Stage, s.In, s.Out)
	}
	fmt.Fprintf(w, "\n%d effect(s)\n%s\n", len(result.Effects), result.Screen)
	return nil
}
