package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("quote_not_found")
	ErrNotEditable       = errors.New("quote_not_editable")
	ErrInvalidItems      = errors.New("invalid_quote_items")
	ErrInvalidTransition = errors.New("invalid_quote_transition")
)

// TransitionError reports an illegal lifecycle transition with the state the
// quote is in and the state the operation requires. It matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	Current  QuoteStatus
	Required QuoteStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("quote transition requires status %q, current status is %q", e.Required, e.Current)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func NewTransitionError(current, required QuoteStatus) error {
	return &TransitionError{Current: current, Required: required}
}
