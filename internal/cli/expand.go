package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExpandResult is the outcome of typing text into the pipeline.
type ExpandResult struct {
	Input   string         `json:"input"`
	Screen  string         `json:"screen"`
	Effects []EffectRecord `json:"effects"`
	Exit    string         `json:"exit,omitempty"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand <text>",
		Short: "Type text into the pipeline and show the result",
		Long: `Type text into the expansion pipeline as if it came from the keyboard
and print the effects it produced and the resulting text.

Control characters work as in the terminal: \x7f is backspace, \x14
(Ctrl-T) toggles expansion, \x00 (Ctrl-Space) opens search, and escape
sequences move the cursor. Selection prompts are answered by --pick, in
order; unanswered prompts pick the first entry.

Example:
  xpand expand "see you :date "
  xpand expand --clipboard hello "paste: :clip "
  xpand expand --pick 1 --format json ":greet "`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runExpand(opts *SimulationOptions, text string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	sim, err := newSimulation(cfg, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	effects, exit, err := sim.typeText(cmd.Context(), text)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to simulate input", err)
	}
	result := ExpandResult{
		Input:   text,
		Screen:  sim.screen.String(),
		Effects: effects,
		Exit:    string(exit),
	}

	out := opts.formatter(cmd)
	if out.JSON() {
		return out.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, e := range result.Effects {
		fmt.Fprintf(w, "%s %s %s\n", styleDim.Render(fmt.Sprintf("#%d", e.Seq)), styleHeading.Render(e.Kind), e.Payload)
	}
	if len(result.Effects) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, result.Screen)
	return nil
}
