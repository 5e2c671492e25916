package process

import (
	"errors"
	"fmt"

	"github.com/roach88/xpand/internal/event"
)

// DefaultMaxSteps bounds the passes of one Process call.
const DefaultMaxSteps = 1000

// stepQuota counts the passes of one Process call.
//
// Stages that keep dispatching events (a linear explosion rather than a
// cycle) would otherwise keep a single input busy forever.
type stepQuota struct {
	maxSteps int
	current  int
}

func newStepQuota(maxSteps int) *stepQuota {
	return &stepQuota{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
func (q *stepQuota) Check(id event.SourceID) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			SourceID: id,
			Steps:    q.current,
			Limit:    q.maxSteps,
		}
	}
	return nil
}

// StepsExceededError is reported when one input expands into more passes
// than allowed. The remaining queued events are dropped.
type StepsExceededError struct {
	SourceID event.SourceID
	Steps    int
	Limit    int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("source %d exceeded max steps quota: %d steps > %d limit",
		e.SourceID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
