package harness

// TraceEvent is one terminal event of a pass, other than the raw input
// passing through.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Input   string         `json:"input"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace contains the terminal events of every pass, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Screen is the final text of the emulated application.
	Screen string `json:"screen"`

	// UI holds notification, icon and folder lines shown by the tray.
	UI []string `json:"ui,omitempty"`

	// Exit is the exit mode when the flow ended with an exit.
	Exit string `json:"exit,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
