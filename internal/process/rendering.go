package process

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/logging"
	"github.com/roach88/xpand/internal/render"
)

// Renderer evaluates a template. *render.Renderer satisfies it.
type Renderer interface {
	Render(ctx context.Context, tpl render.Template, opts render.Options) (string, error)
}

// Render produces the body of a requested match. The typed right separator
// is appended so it survives the trigger compensation.
type Render struct {
	matches  Matches
	renderer Renderer
	log      zerolog.Logger
}

// NewRender creates the render stage.
func NewRender(matches Matches, renderer Renderer) *Render {
	return &Render{
		matches:  matches,
		renderer: renderer,
		log:      logging.Component("process.render"),
	}
}

// Name implements Middleware.
func (*Render) Name() string { return "render" }

// Next implements Middleware.
func (s *Render) Next(ctx context.Context, ev event.Event, _ Dispatch) event.Event {
	req, ok := ev.Type.(event.RenderingRequested)
	if !ok {
		return ev
	}

	store, _ := s.matches.Load()
	m, exists := store.Match(req.MatchID)
	if !exists {
		return ev.Noop()
	}

	opts := render.Options{Globals: store.GlobalVars()}
	if m.PropagateCase {
		opts.Casing = render.CasingFromTrigger(req.Trigger, m.UppercaseStyle)
	}

	body, err := s.renderer.Render(ctx, m.Template(req.TriggerArgs), opts)
	if err != nil {
		if render.IsAborted(err) {
			s.log.Debug().Int32("match_id", req.MatchID).Msg("Rendering aborted by user")
			return ev.Noop()
		}
		s.log.Warn().Err(err).Int32("match_id", req.MatchID).Msg("Rendering failed")
		return ev.CausedBy(event.ProcessingError{Reason: err.Error()})
	}

	return ev.CausedBy(event.Rendered{
		MatchID:   req.MatchID,
		Body:      body + req.RightSeparator,
		Format:    req.Format,
		ForceMode: req.ForceMode,
	})
}

// ImageResolve expands $CONFIG in an image path and checks the file exists.
type ImageResolve struct {
	fs        afero.Fs
	configDir string
	log       zerolog.Logger
}

// NewImageResolve creates the stage.
func NewImageResolve(fs afero.Fs, configDir string) *ImageResolve {
	return &ImageResolve{fs: fs, configDir: configDir, log: logging.Component("process.image")}
}

// Name implements Middleware.
func (*ImageResolve) Name() string { return "image_resolve" }

// Next implements Middleware.
func (s *ImageResolve) Next(_ context.Context, ev event.Event, _ Dispatch) event.Event {
	req, ok := ev.Type.(event.ImageRequested)
	if !ok {
		return ev
	}
	path := strings.ReplaceAll(req.ImagePath, "$CONFIG", s.configDir)
	info, err := s.fs.Stat(path)
	if err != nil || info.IsDir() {
		s.log.Warn().Str("path", path).Msg("Image not found")
		return ev.CausedBy(event.ProcessingError{Reason: "image not found: " + path})
	}
	return ev.CausedBy(event.ImageResolved{ImagePath: path})
}

// CursorHint is the marker placing the caret inside an expansion.
const CursorHint = "$|$"

// CursorHintStage removes the first cursor hint from a plain text body and
// dispatches the caret movement back to it.
type CursorHintStage struct{}

// Name implements Middleware.
func (CursorHintStage) Name() string { return "cursor_hint" }

// Next implements Middleware.
func (CursorHintStage) Next(_ context.Context, ev event.Event, dispatch Dispatch) event.Event {
	r, ok := ev.Type.(event.Rendered)
	if !ok || r.Format != event.FormatText {
		return ev
	}
	before, after, found := strings.Cut(r.Body, CursorHint)
	if !found {
		return ev
	}
	r.Body = before + after
	dispatch(ev.CausedBy(event.CursorHintCompensation{BackCount: len([]rune(after))}))
	return ev.CausedBy(r)
}
