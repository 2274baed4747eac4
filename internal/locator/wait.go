package locator

import (
	"fmt"
	"time"
)

// Condition is a readiness predicate gating an interaction.
type Condition int

const (
	Visible Condition = iota
	Clickable
	Invisible
	Attached
)

func (c Condition) String() string {
	switch c {
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	case Invisible:
		return "invisible"
	case Attached:
		return "attached"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// Poll calls check every interval on the calling goroutine until it reports done,
// returns an error, or timeout elapses. Expiry yields ErrTimeout.
func Poll(timeout, interval time.Duration, check func() (bool, error)) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		if remaining < interval {
			time.Sleep(remaining)
		} else {
			time.Sleep(interval)
		}
	}
}
