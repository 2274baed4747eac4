package helpers

import (
	"errors"

	"github.com/benefitsqa/dashboard-e2e/internal/pages"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// TrackEmployee records the id of a row the test just created and registers
// its deletion with t.Cleanup, so the row goes away even when an assertion
// fails later. The id survives renames, so edited rows are cleaned up too.
func (e *Env) TrackEmployee(dash *pages.DashboardPage, firstName, lastName string) pages.Employee {
	e.T.Helper()
	emp, err := dash.FindEmployee(firstName, lastName)
	require.NoError(e.T, err, "Employee %s %s should be in the table", firstName, lastName)

	e.TrackEmployeeID(dash, emp)
	return emp
}

// TrackEmployeeID registers the deletion of a row already identified by id.
// Use it when several rows share a name and FindEmployee would be ambiguous.
func (e *Env) TrackEmployeeID(dash *pages.DashboardPage, emp pages.Employee) {
	e.T.Helper()
	e.T.Cleanup(func() {
		if e.Session.Closed() {
			return
		}
		// A failed step may have left a modal open.
		if page, err := e.Session.Page(); err == nil {
			if _, err := page.Reload(playwright.PageReloadOptions{
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			}); err != nil {
				e.T.Logf("Cleanup reload failed: %v", err)
			}
		}
		err := dash.DeleteEmployeeByID(emp.ID)
		switch {
		case err == nil:
			e.T.Logf("Cleanup removed employee %s (%s)", emp.FullName(), emp.ID)
		case errors.Is(err, pages.ErrEmployeeNotFound):
		default:
			e.T.Errorf("Cleanup could not remove employee %s (%s): %v", emp.FullName(), emp.ID, err)
		}
	})
}
