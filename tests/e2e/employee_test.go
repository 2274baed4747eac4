package e2e

import (
	"testing"

	"github.com/benefitsqa/dashboard-e2e/internal/pages"
	"github.com/benefitsqa/dashboard-e2e/tests/e2e/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Used when no credentials are configured.
const (
	defaultUsername = "TestUser773"
	defaultPassword = "6q0]l$BKOUb!"
)

func loginAsEmployer(t *testing.T) (*helpers.Env, *pages.DashboardPage) {
	t.Helper()
	env := helpers.NewEnv(t)
	user, pass := env.Credentials(defaultUsername, defaultPassword)
	return env, env.LoginAs(user, pass)
}

func TestAddEmployee(t *testing.T) {
	env, dash := loginAsEmployer(t)
	first, last := env.UniqueName("John"), "Doe"

	before, err := dash.GetEmployeeCount()
	require.NoError(t, err)

	require.NoError(t, dash.AddEmployee(first, last, "2"))
	env.TrackEmployee(dash, first, last)

	found, err := dash.IsEmployeeInTable(first, last)
	require.NoError(t, err)
	assert.True(t, found, "Employee should be in the table after adding")

	after, err := dash.GetEmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
	assert.False(t, dash.IsEmployeeModalVisible(), "Modal should close after adding")
}

func TestEditEmployee(t *testing.T) {
	env, dash := loginAsEmployer(t)
	first, last := env.UniqueName("Jane"), "Smith"
	newFirst, newLast := env.UniqueName("Janet"), "Johnson"

	require.NoError(t, dash.AddEmployee(first, last, "1"))
	emp := env.TrackEmployee(dash, first, last)

	require.NoError(t, dash.ClickEditEmployee(first, last))
	assert.True(t, dash.IsEmployeeModalVisible(), "Edit modal should open")
	require.NoError(t, dash.FillEmployeeForm(newFirst, newLast, "3"))
	require.NoError(t, dash.ClickUpdateEmployeeInModal())

	found, err := dash.IsEmployeeInTable(newFirst, newLast)
	require.NoError(t, err)
	assert.True(t, found, "Updated name should be in the table")

	found, err = dash.IsEmployeeInTable(first, last)
	require.NoError(t, err)
	assert.False(t, found, "Old name should be gone")

	updated, err := dash.FindEmployee(newFirst, newLast)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, updated.ID, "Editing keeps the row id")
	assert.Equal(t, 3, updated.Dependants)
}

func TestDeleteEmployee(t *testing.T) {
	env, dash := loginAsEmployer(t)
	first, last := env.UniqueName("Bob"), "Wilson"

	before, err := dash.GetEmployeeCount()
	require.NoError(t, err)

	require.NoError(t, dash.AddEmployee(first, last, "0"))
	env.TrackEmployee(dash, first, last)

	require.NoError(t, dash.ClickDeleteEmployee(first, last))
	assert.True(t, dash.IsDeleteModalVisible(), "Delete confirmation should open")

	shownFirst, shownLast, err := dash.DeleteModalName()
	require.NoError(t, err)
	assert.Equal(t, first, shownFirst)
	assert.Equal(t, last, shownLast)

	require.NoError(t, dash.ConfirmDelete())

	found, err := dash.IsEmployeeInTable(first, last)
	require.NoError(t, err)
	assert.False(t, found, "Employee should be gone after deleting")

	after, err := dash.GetEmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCancelledModalsChangeNothing(t *testing.T) {
	env, dash := loginAsEmployer(t)
	first, last := env.UniqueName("Carol"), "Baker"

	require.NoError(t, dash.AddEmployee(first, last, "1"))
	env.TrackEmployee(dash, first, last)
	before, err := dash.GetEmployeeCount()
	require.NoError(t, err)

	require.NoError(t, dash.ClickDeleteEmployee(first, last))
	require.NoError(t, dash.CancelDelete())
	assert.False(t, dash.IsDeleteModalVisible())

	require.NoError(t, dash.ClickEditEmployee(first, last))
	require.NoError(t, dash.FillEmployeeForm("Changed", "Mind", "5"))
	require.NoError(t, dash.CancelEmployeeModal())
	assert.False(t, dash.IsEmployeeModalVisible())

	found, err := dash.IsEmployeeInTable(first, last)
	require.NoError(t, err)
	assert.True(t, found)

	after, err := dash.GetEmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRowActionsOnMissingEmployee(t *testing.T) {
	_, dash := loginAsEmployer(t)

	err := dash.ClickEditEmployee("Nobody", "Anywhere")
	assert.ErrorIs(t, err, pages.ErrEmployeeNotFound)
	assert.EqualError(t, err, "employee not found: Nobody Anywhere")

	err = dash.ClickDeleteEmployee("Nobody", "Anywhere")
	assert.ErrorIs(t, err, pages.ErrEmployeeNotFound)

	err = dash.DeleteEmployeeByID("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, pages.ErrEmployeeNotFound)
}

func TestDuplicateNamesResolvedByID(t *testing.T) {
	env, dash := loginAsEmployer(t)
	first, last := env.UniqueName("Sam"), "Twin"

	require.NoError(t, dash.AddEmployee(first, last, "1"))
	older := env.TrackEmployee(dash, first, last)
	require.NoError(t, dash.AddEmployee(first, last, "4"))

	employees, err := dash.Employees()
	require.NoError(t, err)
	var twins []pages.Employee
	for _, e := range employees {
		if e.FirstName == first && e.LastName == last {
			twins = append(twins, e)
			if e.ID != older.ID {
				env.TrackEmployeeID(dash, e)
			}
		}
	}
	require.Len(t, twins, 2)
	newer := twins[1]
	if newer.ID == older.ID {
		newer = twins[0]
	}

	require.NoError(t, dash.DeleteEmployeeByID(newer.ID))

	remaining, err := dash.FindEmployee(first, last)
	require.NoError(t, err)
	assert.Equal(t, older.ID, remaining.ID, "Deleting by id leaves the other row alone")
}

func TestEmptyTableCountsZero(t *testing.T) {
	env, dash := loginAsEmployer(t)
	if env.Sim == nil {
		t.Skip("Needs an empty table, which only the local simulator guarantees")
	}

	count, err := dash.GetEmployeeCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count, "The placeholder row is not an employee")

	employees, err := dash.Employees()
	require.NoError(t, err)
	assert.Empty(t, employees)
}
