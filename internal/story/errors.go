package story

import (
	"errors"
	"fmt"
)

// ErrInvalidStep is returned when a step cannot be scheduled or rendered
var ErrInvalidStep = errors.New("invalid step")

// StepError describes which step and field failed validation
type StepError struct {
	Index  int
	ID     string
	Field  string
	Reason string
}

func (e *StepError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("step %d: %s: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("step %d (%q): %s: %s", e.Index, e.ID, e.Field, e.Reason)
}

// Is reports ErrInvalidStep so callers can match the category.
func (e *StepError) Is(target error) bool { return target == ErrInvalidStep }
