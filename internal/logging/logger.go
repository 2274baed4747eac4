// Package logging builds the logrus loggers used by the suite and the simulator.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/sirupsen/logrus"
)

// New returns a logger configured from the logging section.
// Unknown levels fall back to info.
func New(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// Null returns a logger that discards everything.
func Null() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// For scopes a logger to one component through the category field.
// A nil logger yields a discarding entry.
func For(log *logrus.Logger, category string) *logrus.Entry {
	if log == nil {
		log = Null()
	}
	return log.WithField("category", category)
}
