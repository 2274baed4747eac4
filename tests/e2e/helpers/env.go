package helpers

import (
	"errors"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/benefitsqa/dashboard-e2e/internal/driver"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/benefitsqa/dashboard-e2e/internal/pages"
	"github.com/benefitsqa/dashboard-e2e/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Env is everything one scenario needs: the target, one browser session and
// the page options bound to it. Teardown is registered with t.Cleanup.
type Env struct {
	T        *testing.T
	Config   *config.Config
	Log      *logrus.Logger
	LoginURL string
	Username string
	Password string
	Session  *driver.Session
	Sim      *sim.Server

	manager *driver.Manager
}

// NewEnv resolves the target, starting the local simulator when no login URL
// is configured, and acquires a browser session. It skips the test when
// browsers are disabled or Playwright cannot start.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("Skipping browser test")
	}
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load configuration")
	log := logging.New(cfg.Logging)

	e := &Env{T: t, Config: cfg, Log: log}
	if cfg.UseSimulator() {
		gin.SetMode(gin.TestMode)
		srv, err := sim.New(cfg.Sim, log)
		require.NoError(t, err, "Failed to build simulator")
		ts := httptest.NewServer(srv.Handler())
		t.Cleanup(ts.Close)

		e.Sim = srv
		e.LoginURL = srv.LoginURL(ts.URL)
		e.Username = cfg.Sim.Username
		e.Password = cfg.Sim.Password
	} else {
		e.LoginURL = cfg.Target.LoginURL
		e.Username = cfg.Target.Username
		e.Password = cfg.Target.Password
		if !Reachable(e.LoginURL) {
			t.Skipf("Target %s is not reachable", e.LoginURL)
		}
	}

	e.manager = driver.NewManager(cfg, log)
	sess, err := e.manager.Acquire()
	if err != nil {
		if errors.Is(err, driver.ErrSessionStart) {
			t.Skipf("Could not start browser session: %v (browsers may not be installed)", err)
		}
		require.NoError(t, err, "Failed to acquire browser session")
	}
	e.Session = sess
	t.Cleanup(e.teardown)
	return e
}

func (e *Env) teardown() {
	if e.T.Failed() && e.Config.Artifacts.Screenshots {
		path := driver.ArtifactPath(e.Config.Artifacts.Dir, "screenshots", e.T.Name(), "png", time.Now())
		if err := e.Session.Screenshot(path); err != nil {
			e.T.Logf("Could not save failure screenshot: %v", err)
		} else {
			e.T.Logf("Failure screenshot: %s", path)
		}
	}
	if err := e.manager.Release(e.Session); err != nil {
		e.T.Logf("Session release reported: %v", err)
	}
}

// Options are the page options for this environment.
func (e *Env) Options() pages.Options {
	return pages.OptionsFrom(e.Config, e.LoginURL, e.Log)
}

// LoginPage binds a login page object to the session.
func (e *Env) LoginPage() *pages.LoginPage {
	return pages.NewLoginPage(e.Session, e.Options())
}

// Credentials returns the configured employer credentials, or the fallbacks
// when none are configured.
func (e *Env) Credentials(fallbackUser, fallbackPassword string) (string, string) {
	user, pass := e.Username, e.Password
	if user == "" {
		user = fallbackUser
	}
	if pass == "" {
		pass = fallbackPassword
	}
	return user, pass
}
