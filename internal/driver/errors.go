package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionStart marks every failure to bring a browser session up.
	ErrSessionStart = errors.New("browser session failed to start")
	// ErrSessionClosed is returned when a released session is used again.
	ErrSessionClosed = errors.New("browser session closed")
	// ErrSessionActive is returned by Acquire while the manager still owns a session.
	ErrSessionActive = errors.New("browser session already active")
)

// SessionStartError records which launch stage failed.
type SessionStartError struct {
	Stage string
	Err   error
}

func (e *SessionStartError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrSessionStart, e.Stage, e.Err)
}

func (e *SessionStartError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrSessionStart) match without losing the cause.
func (e *SessionStartError) Is(target error) bool {
	return target == ErrSessionStart
}
