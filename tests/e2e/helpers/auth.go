package helpers

import (
	"github.com/benefitsqa/dashboard-e2e/internal/pages"
	"github.com/stretchr/testify/require"
)

// LoginAs logs in and requires the dashboard to show up.
func (e *Env) LoginAs(username, password string) *pages.DashboardPage {
	e.T.Helper()
	dash, err := e.LoginPage().Login(username, password)
	require.NoError(e.T, err, "Login sequence failed")

	ok, err := dash.DashboardDisplayed()
	require.NoError(e.T, err, "Could not check the dashboard")
	require.True(e.T, ok, "Dashboard should be displayed after login")
	return dash
}

// LoginAsEmployer logs in with the environment's credentials.
func (e *Env) LoginAsEmployer() *pages.DashboardPage {
	e.T.Helper()
	return e.LoginAs(e.Username, e.Password)
}
