// Package pages holds the page objects for the Benefits Dashboard: one type per
// logical screen, each building its locator table at construction time.
package pages

import (
	"errors"
	"fmt"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/sirupsen/logrus"
)

// Options is what every page object needs besides the session.
type Options struct {
	LoginURL string
	Timeouts config.TimeoutsConfig
	Logger   *logrus.Logger
}

// OptionsFrom builds page options for a resolved login URL.
func OptionsFrom(cfg *config.Config, loginURL string, log *logrus.Logger) Options {
	return Options{
		LoginURL: loginURL,
		Timeouts: cfg.Timeouts,
		Logger:   log,
	}
}

// ErrEmployeeNotFound is matched by every *EmployeeNotFoundError.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeNotFoundError is returned by row actions when no row matches.
type EmployeeNotFoundError struct {
	FirstName string
	LastName  string
	ID        string
}

func (e *EmployeeNotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("employee not found: id %s", e.ID)
	}
	return fmt.Sprintf("employee not found: %s %s", e.FirstName, e.LastName)
}

func (e *EmployeeNotFoundError) Is(target error) bool {
	return target == ErrEmployeeNotFound
}
