package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTime    = errors.New("timestamp missing")
	ErrEndBeforeStart = errors.New("end is before start")
)

// InputError describes malformed input for one event or setting.
// EventID is empty for inputs that are not tied to an event.
type InputError struct {
	EventID string
	Field   string
	Err     error
}

func (e *InputError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("event %s: invalid %s: %v", e.EventID, e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
