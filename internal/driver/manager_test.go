package driver

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(config.Default(), logging.Null())
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := newTestManager()

	t.Run("nil session", func(t *testing.T) {
		assert.NoError(t, m.Release(nil))
	})

	t.Run("session that never started", func(t *testing.T) {
		s := &Session{ID: "empty"}
		assert.NoError(t, m.Release(s))
		assert.NoError(t, m.Release(s))
		assert.True(t, s.Closed())
	})

	t.Run("released session refuses page access", func(t *testing.T) {
		s := &Session{ID: "done"}
		require.NoError(t, m.Release(s))
		_, err := s.Page()
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.ErrorIs(t, s.Screenshot(filepath.Join(t.TempDir(), "x.png")), ErrSessionClosed)
	})
}

func TestAcquireRefusesSecondSession(t *testing.T) {
	m := newTestManager()
	m.active = &Session{ID: "busy", page: nil}

	_, err := m.Acquire()
	assert.ErrorIs(t, err, ErrSessionActive)

	require.NoError(t, m.Release(m.active))
	assert.Nil(t, m.active)
}

func TestSessionStartError(t *testing.T) {
	cause := fmt.Errorf("executable doesn't exist")
	err := error(&SessionStartError{Stage: "launch", Err: cause})

	assert.True(t, errors.Is(err, ErrSessionStart))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "launch")
	assert.Contains(t, err.Error(), "executable doesn't exist")

	var startErr *SessionStartError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, "launch", startErr.Stage)
}

func TestBrowserType(t *testing.T) {
	pw := &playwright.Playwright{}

	_, err := browserType(pw, "netscape")
	assert.ErrorContains(t, err, "unsupported browser")

	_, err = browserType(pw, "firefox")
	assert.ErrorContains(t, err, "not available")
}

func TestArtifactPath(t *testing.T) {
	now := time.Unix(1700000000, 0)
	got := ArtifactPath("results", "screenshots", "TestEmployee/Add employee", "png", now)
	assert.Equal(t, filepath.Join("results", "screenshots", "TestEmployee_Add_employee_1700000000.png"), got)
}
