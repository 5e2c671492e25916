package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/xpand/internal/engine"
	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	SimulationOptions
	Database string
	List     bool
}

// SessionSummary describes one recorded session.
type SessionSummary struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Matches   int       `json:"matches"`
	Inputs    int       `json:"inputs"`
}

// DivergenceReport is one input whose replayed effects differ.
type DivergenceReport struct {
	Seq      int64    `json:"seq"`
	Input    string   `json:"input"`
	Recorded []string `json:"recorded"`
	Replayed []string `json:"replayed"`
}

// ReplayReport holds the replay result of one session.
type ReplayReport struct {
	Session   SessionSummary `json:"session"`
	Inputs    int            `json:"inputs"`
	Identical bool           `json:"identical"`
	// MatchesChanged is set when the matches differ from the recording.
	MatchesChanged bool               `json:"matches_changed"`
	Divergences    []DivergenceReport `json:"divergences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{SimulationOptions: SimulationOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "replay [session-id]",
		Short: "Replay a recorded session and check it is reproduced",
		Long: `Feed the inputs of a recorded session through a fresh pipeline built
from the current matches and compare the results with the recording.
Without a session id the most recent session is replayed.

Replay is exact only when the matches are unchanged and the session used
no time, clipboard or shell dependent variables.

Exit codes:
  0 - Every input reproduced its recorded results
  1 - At least one input diverged
  2 - Command error (journal not found, unknown session)

Examples:
  xpand replay
  xpand replay --list
  xpand replay 01927f3c-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runReplay(opts, id, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database (default from config)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded sessions")

	return cmd
}

func runReplay(opts *ReplayOptions, sessionID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	path := opts.Database
	if path == "" {
		path = cfg.Journal.Path
	}
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	out := opts.formatter(cmd)
	if opts.List {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		summaries := make([]SessionSummary, len(sessions))
		for i, s := range sessions {
			summaries[i] = summarize(s)
		}
		if out.JSON() {
			return out.Success(summaries)
		}
		for _, s := range summaries {
			fmt.Fprintf(out.Writer, "%s  %s  %d input(s)  %s\n", s.ID, s.StartedAt.Format(time.RFC3339), s.Inputs, styleDim.Render(s.Label))
		}
		return nil
	}

	var session journal.Session
	if sessionID == "" {
		session, err = j.LatestSession(ctx)
	} else {
		session, err = j.Session(ctx, sessionID)
	}
	if errors.Is(err, journal.ErrSessionNotFound) {
		return WrapExitError(ExitCommandError, "no session to replay", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	entries, err := j.Entries(ctx, session.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	sim, err := newSimulation(cfg, &opts.SimulationOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	res, err := engine.Replay(ctx, entries, sim.app.Processor, sim.app.Sequencer)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	hash, err := sim.app.Matches.Store().Fingerprint()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fingerprint matches", err)
	}
	report := ReplayReport{
		Session:        summarize(session),
		Inputs:         res.Inputs,
		Identical:      res.Identical(),
		MatchesChanged: session.StoreHash != "" && session.StoreHash != hash,
	}
	for _, d := range res.Divergences {
		report.Divergences = append(report.Divergences, DivergenceReport{
			Seq:      d.Seq,
			Input:    string(d.Input.Kind()),
			Recorded: kinds(d.Recorded),
			Replayed: kinds(d.Replayed),
		})
	}

	if out.JSON() {
		if err := out.Report(report, !report.Identical, "E_DIVERGED", fmt.Sprintf("%d input(s) diverged", len(report.Divergences))); err != nil {
			return err
		}
	} else {
		printReplay(out, report)
	}
	if !report.Identical {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d input(s) diverged", len(report.Divergences), report.Inputs))
	}
	return nil
}

func summarize(s journal.Session) SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Label:     s.Label,
		StartedAt: s.StartedAt,
		Matches:   s.StoreMatches,
		Inputs:    s.Inputs,
	}
}

func kinds(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = string(e.Kind())
	}
	return out
}

func printReplay(f *OutputFormatter, r ReplayReport) {
	w := f.Writer
	fmt.Fprintf(w, "%s %s\n", styleHeading.Render("session"), r.Session.ID)
	if r.MatchesChanged {
		fmt.Fprintf(w, "%s matches changed since the session was recorded\n", styleWarn.Render("!"))
	}
	for _, d := range r.Divergences {
		fmt.Fprintf(w, "%s input %d (%s)\n", mark(false), d.Seq, d.Input)
		fmt.Fprintf(w, "    recorded: %v\n", d.Recorded)
		fmt.Fprintf(w, "    replayed: %v\n", d.Replayed)
	}
	if r.Identical {
		fmt.Fprintf(w, "%s %d input(s) replayed identically\n", mark(true), r.Inputs)
		return
	}
	fmt.Fprintf(w, "%d of %d input(s) diverged\n", len(r.Divergences), r.Inputs)
}
