// Package driver owns the lifecycle of the Playwright browser session used by one test.
package driver

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Manager hands out at most one session at a time.
type Manager struct {
	cfg *config.Config
	log *logrus.Entry

	mu     sync.Mutex
	active *Session
}

// NewManager creates a manager for the given configuration.
func NewManager(cfg *config.Config, log *logrus.Logger) *Manager {
	return &Manager{
		cfg: cfg,
		log: logging.For(log, "driver"),
	}
}

// Acquire launches a fresh browser, context and page.
// Any launch failure is returned as a *SessionStartError; nothing is retried.
func (m *Manager) Acquire() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && !m.active.Closed() {
		return nil, ErrSessionActive
	}

	s := &Session{ID: uuid.NewString()}
	log := m.log.WithField("session", s.ID)
	browserName := strings.ToLower(m.cfg.Browser.Name)

	if m.cfg.Browser.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{browserName}}); err != nil {
			return nil, &SessionStartError{Stage: "install", Err: err}
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, &SessionStartError{Stage: "run", Err: err}
	}
	s.pw = pw

	bt, err := browserType(pw, browserName)
	if err != nil {
		_ = s.close()
		return nil, &SessionStartError{Stage: "browser type", Err: err}
	}

	browser, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.cfg.Browser.Headless),
		SlowMo:   playwright.Float(float64(m.cfg.Browser.SlowMo)),
	})
	if err != nil {
		_ = s.close()
		return nil, &SessionStartError{Stage: "launch", Err: err}
	}
	s.browser = browser

	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.cfg.Browser.ViewportWidth,
			Height: m.cfg.Browser.ViewportHeight,
		},
	}
	if m.cfg.Artifacts.Videos {
		opts.RecordVideo = &playwright.RecordVideo{
			Dir: filepath.Join(m.cfg.Artifacts.Dir, "videos"),
		}
	}
	context, err := browser.NewContext(opts)
	if err != nil {
		_ = s.close()
		return nil, &SessionStartError{Stage: "context", Err: err}
	}
	s.context = context

	page, err := context.NewPage()
	if err != nil {
		_ = s.close()
		return nil, &SessionStartError{Stage: "page", Err: err}
	}
	page.SetDefaultTimeout(m.cfg.Timeouts.ElementTimeoutMS())
	page.SetDefaultNavigationTimeout(m.cfg.Timeouts.NavigationTimeoutMS())
	s.page = page

	m.active = s
	log.WithField("browser", browserName).Debug("session acquired")
	return s, nil
}

// Release tears the session down. It tolerates nil, already released and
// foreign sessions so it can sit in a cleanup path unconditionally.
func (m *Manager) Release(s *Session) error {
	if s == nil {
		return nil
	}
	err := s.close()

	m.mu.Lock()
	if m.active == s {
		m.active = nil
	}
	m.mu.Unlock()

	entry := m.log.WithField("session", s.ID)
	if err != nil {
		entry.WithError(err).Warn("session released with errors")
		return err
	}
	entry.Debug("session released")
	return nil
}

func browserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	var bt playwright.BrowserType
	switch name {
	case "chromium", "chrome", "":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		return nil, fmt.Errorf("unsupported browser %q", name)
	}
	if bt == nil {
		return nil, fmt.Errorf("browser %q not available", name)
	}
	return bt, nil
}
