package event

// DetectedMatch is a candidate produced by a matcher. Empty separator
// strings mean no separator was present.
type DetectedMatch struct {
	ID             int32             `json:"id"`
	Trigger        string            `json:"trigger,omitempty"`
	LeftSeparator  string            `json:"left_separator,omitempty"`
	RightSeparator string            `json:"right_separator,omitempty"`
	Args           map[string]string `json:"args,omitempty"`
}

// Format is the markup of a rendered body.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ForceMode overrides the injection backend for one match.
type ForceMode string

const (
	ForceNone      ForceMode = ""
	ForceKeys      ForceMode = "keys"
	ForceClipboard ForceMode = "clipboard"
)

// ProcessingError ends a pass that failed inside a stage.
type ProcessingError struct {
	Reason string `json:"reason"`
}

// MatchesDetected carries every candidate found for one input.
type MatchesDetected struct {
	Matches  []DetectedMatch `json:"matches"`
	IsSearch bool            `json:"is_search,omitempty"`
}

// MatchSelected carries the single candidate chosen for expansion.
type MatchSelected struct {
	Chosen DetectedMatch `json:"chosen"`
}

// CauseCompensatedMatch is emitted once the typed trigger has been scheduled
// for removal.
type CauseCompensatedMatch struct {
	Match DetectedMatch `json:"match"`
}

// RenderingRequested asks the render stage to produce a body.
type RenderingRequested struct {
	MatchID        int32             `json:"match_id"`
	Trigger        string            `json:"trigger,omitempty"`
	LeftSeparator  string            `json:"left_separator,omitempty"`
	RightSeparator string            `json:"right_separator,omitempty"`
	TriggerArgs    map[string]string `json:"trigger_args,omitempty"`
	Format         Format            `json:"format"`
	ForceMode      ForceMode         `json:"force_mode,omitempty"`
}

// Rendered carries a rendered body ready for injection.
type Rendered struct {
	MatchID   int32     `json:"match_id"`
	Body      string    `json:"body"`
	Format    Format    `json:"format"`
	ForceMode ForceMode `json:"force_mode,omitempty"`
}

// ImageRequested asks the image stage to resolve a configured path.
type ImageRequested struct {
	MatchID   int32  `json:"match_id"`
	ImagePath string `json:"image_path"`
}

// ImageResolved carries an image path that exists on disk.
type ImageResolved struct {
	ImagePath string `json:"image_path"`
}

// MatchInjected records that an expansion was handed to the dispatcher.
type MatchInjected struct{}

// DiscardPrevious drops every later event whose source id is below the
// bound.
type DiscardPrevious struct {
	MinimumSourceID SourceID `json:"minimum_source_id"`
}

// DiscardBetween drops every later event whose source id lies in
// [StartID, EndID).
type DiscardBetween struct {
	StartID SourceID `json:"start_id"`
	EndID   SourceID `json:"end_id"`
}

// Enabled and Disabled report a change of the expansion toggle.
type Enabled struct{}
type Disabled struct{}

func (ProcessingError) Kind() Kind       { return KindProcessingError }
func (MatchesDetected) Kind() Kind       { return KindMatchesDetected }
func (MatchSelected) Kind() Kind         { return KindMatchSelected }
func (CauseCompensatedMatch) Kind() Kind { return KindCauseCompensatedMatch }
func (RenderingRequested) Kind() Kind    { return KindRenderingRequested }
func (Rendered) Kind() Kind              { return KindRendered }
func (ImageRequested) Kind() Kind        { return KindImageRequested }
func (ImageResolved) Kind() Kind         { return KindImageResolved }
func (MatchInjected) Kind() Kind         { return KindMatchInjected }
func (DiscardPrevious) Kind() Kind       { return KindDiscardPrevious }
func (DiscardBetween) Kind() Kind        { return KindDiscardBetween }
func (Enabled) Kind() Kind               { return KindEnabled }
func (Disabled) Kind() Kind              { return KindDisabled }

func (ProcessingError) sealed()       {}
func (MatchesDetected) sealed()       {}
func (MatchSelected) sealed()         {}
func (CauseCompensatedMatch) sealed() {}
func (RenderingRequested) sealed()    {}
func (Rendered) sealed()              {}
func (ImageRequested) sealed()        {}
func (ImageResolved) sealed()         {}
func (MatchInjected) sealed()         {}
func (DiscardPrevious) sealed()       {}
func (DiscardBetween) sealed()        {}
func (Enabled) sealed()               {}
func (Disabled) sealed()              {}
