package locator

import (
	"errors"
	"fmt"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrTimeout         = errors.New("timed out waiting for element")
	ErrNotInteractable = errors.New("element not interactable")
	ErrUnknownField    = errors.New("unknown field")
)

// ElementError carries the field and selector involved in a failed lookup or action.
type ElementError struct {
	Op        string
	Field     string
	Selector  string
	Condition string
	Err       error
}

func (e *ElementError) Error() string {
	msg := fmt.Sprintf("%s %q (%s)", e.Op, e.Field, e.Selector)
	if e.Condition != "" {
		msg += " until " + e.Condition
	}
	return msg + ": " + e.Err.Error()
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// IsAbsent reports whether err means the element was missing or never became ready,
// as opposed to the check itself failing.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrTimeout)
}
