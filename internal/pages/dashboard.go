package pages

import (
	"fmt"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/locator"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	fieldNavbarBrand          = "navbarBrand"
	fieldLogoutLink           = "logoutLink"
	fieldEmployeesTable       = "employeesTable"
	fieldEmployeeRows         = "employeeRows"
	fieldAddButton            = "addButton"
	fieldEmployeeModal        = "employeeModal"
	fieldFirstName            = "firstName"
	fieldLastName             = "lastName"
	fieldDependants           = "dependants"
	fieldAddEmployeeButton    = "addEmployeeButton"
	fieldUpdateEmployeeButton = "updateEmployeeButton"
	fieldCancelEmployee       = "cancelEmployeeButton"
	fieldDeleteModal          = "deleteModal"
	fieldDeleteEmployeeButton = "deleteEmployeeButton"
	fieldCancelDelete         = "cancelDeleteButton"
	fieldDeleteFirstName      = "deleteFirstName"
	fieldDeleteLastName       = "deleteLastName"
)

var (
	editIcon   = locator.ClassName("fa-edit")
	deleteIcon = locator.ClassName("fa-times")
)

// DashboardPage is the employee list with its add/edit and delete modals.
type DashboardPage struct {
	src    locator.PageSource
	opts   Options
	el     *locator.Resolver
	log    *logrus.Entry
	settle time.Duration
}

// NewDashboardPage binds a dashboard page object to a session.
func NewDashboardPage(src locator.PageSource, opts Options) *DashboardPage {
	reg := locator.NewRegistry().
		MustRegister(fieldNavbarBrand, locator.ClassName("navbar-brand")).
		MustRegister(fieldLogoutLink, locator.CSS("a[href$='/Account/LogOut']")).
		MustRegister(fieldEmployeesTable, locator.ID("employeesTable")).
		MustRegister(fieldEmployeeRows, locator.CSS("#employeesTable tbody tr")).
		MustRegister(fieldAddButton, locator.ID("add")).
		MustRegister(fieldEmployeeModal, locator.ID("employeeModal")).
		MustRegister(fieldFirstName, locator.ID("firstName")).
		MustRegister(fieldLastName, locator.ID("lastName")).
		MustRegister(fieldDependants, locator.ID("dependants")).
		MustRegister(fieldAddEmployeeButton, locator.ID("addEmployee")).
		MustRegister(fieldUpdateEmployeeButton, locator.ID("updateEmployee")).
		MustRegister(fieldCancelEmployee, locator.CSS("#employeeModal .btn-secondary")).
		MustRegister(fieldDeleteModal, locator.ID("deleteModal")).
		MustRegister(fieldDeleteEmployeeButton, locator.ID("deleteEmployee")).
		MustRegister(fieldCancelDelete, locator.CSS("#deleteModal .btn-secondary")).
		MustRegister(fieldDeleteFirstName, locator.ID("deleteFirstName")).
		MustRegister(fieldDeleteLastName, locator.ID("deleteLastName"))

	log := logging.For(opts.Logger, "dashboard-page")
	return &DashboardPage{
		src:    src,
		opts:   opts,
		el:     locator.NewResolver(src, reg, opts.Timeouts, log),
		log:    log,
		settle: opts.Timeouts.Settle,
	}
}

// DashboardDisplayed waits for the employee table and then checks that the
// brand, the table and the add button are visible. A table that never shows
// up is (false, nil); other failures are returned as errors.
func (d *DashboardPage) DashboardDisplayed() (bool, error) {
	if err := d.el.WaitUntil(fieldEmployeesTable, locator.Visible, 0); err != nil {
		if locator.IsAbsent(err) {
			return false, nil
		}
		return false, err
	}
	return d.el.AllVisible(fieldNavbarBrand, fieldEmployeesTable, fieldAddButton)
}

// IsDashboardDisplayed is DashboardDisplayed with errors reported as false.
func (d *DashboardPage) IsDashboardDisplayed() bool {
	ok, err := d.DashboardDisplayed()
	return d.el.Truthy("dashboard displayed", ok, err)
}

// GetEmployeeCount counts table rows once the table has loaded. The lone
// "No employees found" placeholder row counts as zero.
func (d *DashboardPage) GetEmployeeCount() (int, error) {
	rows, err := d.loadedRows()
	if err != nil {
		return 0, err
	}
	return countEmployees(rows), nil
}

// IsEmployeeInTable reports whether a row's first and last name cells equal
// the given names exactly.
func (d *DashboardPage) IsEmployeeInTable(firstName, lastName string) (bool, error) {
	rows, err := d.loadedRows()
	if err != nil {
		return false, err
	}
	return firstMatch(rows, firstName, lastName) >= 0, nil
}

// Employees returns every data row of the loaded table.
func (d *DashboardPage) Employees() ([]Employee, error) {
	rows, err := d.loadedRows()
	if err != nil {
		return nil, err
	}
	return employeesFrom(rows), nil
}

// FindEmployee returns the first row matching the names.
func (d *DashboardPage) FindEmployee(firstName, lastName string) (Employee, error) {
	employees, err := d.Employees()
	if err != nil {
		return Employee{}, err
	}
	for _, e := range employees {
		if e.FirstName == firstName && e.LastName == lastName {
			return e, nil
		}
	}
	return Employee{}, &EmployeeNotFoundError{FirstName: firstName, LastName: lastName}
}

// ClickAddEmployee opens the creation modal.
func (d *DashboardPage) ClickAddEmployee() error {
	if err := d.el.Click(fieldAddButton); err != nil {
		return err
	}
	return d.el.WaitUntil(fieldEmployeeModal, locator.Visible, 0)
}

// FillEmployeeForm clears and fills the three form fields of the open modal.
func (d *DashboardPage) FillEmployeeForm(firstName, lastName, dependants string) error {
	if err := d.el.WaitUntil(fieldFirstName, locator.Visible, 0); err != nil {
		return err
	}
	if err := d.el.Type(fieldFirstName, firstName); err != nil {
		return err
	}
	if err := d.el.Type(fieldLastName, lastName); err != nil {
		return err
	}
	return d.el.Type(fieldDependants, dependants)
}

// ClickAddEmployeeInModal submits the creation form and waits for the table to refresh.
func (d *DashboardPage) ClickAddEmployeeInModal() error {
	return d.submit(fieldAddEmployeeButton)
}

// AddEmployee opens the modal, fills it and submits it.
func (d *DashboardPage) AddEmployee(firstName, lastName, dependants string) error {
	if err := d.ClickAddEmployee(); err != nil {
		return err
	}
	if err := d.FillEmployeeForm(firstName, lastName, dependants); err != nil {
		return err
	}
	return d.ClickAddEmployeeInModal()
}

// ClickEditEmployee opens the edit modal for the first row matching the names.
func (d *DashboardPage) ClickEditEmployee(firstName, lastName string) error {
	idx, err := d.rowFor(firstName, lastName)
	if err != nil {
		return err
	}
	return d.clickRowIcon(idx, "edit", editIcon, fieldEmployeeModal)
}

// EditEmployeeByID opens the edit modal for the row with the given id.
func (d *DashboardPage) EditEmployeeByID(id string) error {
	idx, err := d.rowForID(id)
	if err != nil {
		return err
	}
	return d.clickRowIcon(idx, "edit", editIcon, fieldEmployeeModal)
}

// ClickUpdateEmployeeInModal submits the edit form and waits for the table to refresh.
func (d *DashboardPage) ClickUpdateEmployeeInModal() error {
	return d.submit(fieldUpdateEmployeeButton)
}

// UpdateEmployee edits the row matching the current names in one step.
func (d *DashboardPage) UpdateEmployee(firstName, lastName, newFirst, newLast, newDependants string) error {
	if err := d.ClickEditEmployee(firstName, lastName); err != nil {
		return err
	}
	if err := d.FillEmployeeForm(newFirst, newLast, newDependants); err != nil {
		return err
	}
	return d.ClickUpdateEmployeeInModal()
}

// CancelEmployeeModal closes the add/edit modal without saving.
func (d *DashboardPage) CancelEmployeeModal() error {
	if err := d.el.Click(fieldCancelEmployee); err != nil {
		return err
	}
	return d.el.WaitUntil(fieldEmployeeModal, locator.Invisible, 0)
}

// ClickDeleteEmployee opens the delete confirmation for the first row matching the names.
func (d *DashboardPage) ClickDeleteEmployee(firstName, lastName string) error {
	idx, err := d.rowFor(firstName, lastName)
	if err != nil {
		return err
	}
	return d.clickRowIcon(idx, "delete", deleteIcon, fieldDeleteModal)
}

// ConfirmDelete confirms the open delete modal and waits for the table to refresh.
func (d *DashboardPage) ConfirmDelete() error {
	return d.submit(fieldDeleteEmployeeButton)
}

// CancelDelete dismisses the delete confirmation.
func (d *DashboardPage) CancelDelete() error {
	if err := d.el.Click(fieldCancelDelete); err != nil {
		return err
	}
	return d.el.WaitUntil(fieldDeleteModal, locator.Invisible, 0)
}

// DeleteEmployee deletes the first row matching the names.
func (d *DashboardPage) DeleteEmployee(firstName, lastName string) error {
	if err := d.ClickDeleteEmployee(firstName, lastName); err != nil {
		return err
	}
	return d.ConfirmDelete()
}

// DeleteEmployeeByID deletes the row with the given id.
func (d *DashboardPage) DeleteEmployeeByID(id string) error {
	idx, err := d.rowForID(id)
	if err != nil {
		return err
	}
	if err := d.clickRowIcon(idx, "delete", deleteIcon, fieldDeleteModal); err != nil {
		return err
	}
	return d.ConfirmDelete()
}

// DeleteModalName returns the name shown in the delete confirmation.
func (d *DashboardPage) DeleteModalName() (string, string, error) {
	first, err := d.el.Text(fieldDeleteFirstName)
	if err != nil {
		return "", "", err
	}
	last, err := d.el.Text(fieldDeleteLastName)
	if err != nil {
		return "", "", err
	}
	return first, last, nil
}

// EmployeeModalVisible checks the add/edit modal right now.
func (d *DashboardPage) EmployeeModalVisible() (bool, error) {
	return d.el.IsVisible(fieldEmployeeModal)
}

// IsEmployeeModalVisible is EmployeeModalVisible with errors reported as false.
func (d *DashboardPage) IsEmployeeModalVisible() bool {
	ok, err := d.EmployeeModalVisible()
	return d.el.Truthy("employee modal visible", ok, err)
}

// DeleteModalVisible checks the delete modal right now.
func (d *DashboardPage) DeleteModalVisible() (bool, error) {
	return d.el.IsVisible(fieldDeleteModal)
}

// IsDeleteModalVisible is DeleteModalVisible with errors reported as false.
func (d *DashboardPage) IsDeleteModalVisible() bool {
	ok, err := d.DeleteModalVisible()
	return d.el.Truthy("delete modal visible", ok, err)
}

// Logout follows the logout link and returns the login page it lands on.
func (d *DashboardPage) Logout() (*LoginPage, error) {
	if err := d.el.Click(fieldLogoutLink); err != nil {
		return nil, err
	}
	login := NewLoginPage(d.src, d.opts)
	if err := login.el.WaitUntil(fieldUsername, locator.Visible, 0); err != nil {
		return nil, err
	}
	return login, nil
}

func (d *DashboardPage) PageTitle() (string, error) {
	page, err := d.el.Page()
	if err != nil {
		return "", err
	}
	return page.Title()
}

func (d *DashboardPage) CurrentURL() (string, error) {
	page, err := d.el.Page()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}

func (d *DashboardPage) rowFor(firstName, lastName string) (int, error) {
	rows, err := d.loadedRows()
	if err != nil {
		return -1, err
	}
	matches := matchRows(rows, firstName, lastName)
	if len(matches) == 0 {
		return -1, &EmployeeNotFoundError{FirstName: firstName, LastName: lastName}
	}
	if len(matches) > 1 {
		d.log.WithFields(logrus.Fields{"employee": firstName + " " + lastName, "rows": matches}).
			Warn("several rows share this name, using the first")
	}
	return matches[0], nil
}

func (d *DashboardPage) rowForID(id string) (int, error) {
	rows, err := d.loadedRows()
	if err != nil {
		return -1, err
	}
	idx := rowByID(rows, id)
	if idx < 0 {
		return -1, &EmployeeNotFoundError{ID: id}
	}
	return idx, nil
}

// clickRowIcon clicks an icon inside the action cell of row idx and waits for modal.
func (d *DashboardPage) clickRowIcon(idx int, name string, icon locator.Locator, modal string) error {
	rows, err := d.el.Element(fieldEmployeeRows)
	if err != nil {
		return err
	}
	row := locator.Element{
		Field:    fmt.Sprintf("%s[%d]", rows.Field, idx),
		Selector: fmt.Sprintf("%s >> nth=%d", rows.Selector, idx),
		Locator:  rows.Locator.Nth(idx),
	}
	actions := locator.Element{
		Field:    row.Field + ".actions",
		Selector: fmt.Sprintf("%s >> td >> nth=%d", row.Selector, colActions),
		Locator:  row.Locator.Locator("td").Nth(colActions),
	}
	if err := d.el.ClickElement(d.el.Within(actions, name, icon)); err != nil {
		return err
	}
	return d.el.WaitUntil(modal, locator.Visible, 0)
}

// submit clicks a modal button, waits for both modals to close and then for
// the table to show something different from what it showed before the click.
func (d *DashboardPage) submit(button string) error {
	before, err := d.snapshot()
	if err != nil {
		return err
	}
	if err := d.el.Click(button); err != nil {
		return err
	}
	if err := d.el.WaitUntil(fieldEmployeeModal, locator.Invisible, 0); err != nil {
		return err
	}
	if err := d.el.WaitUntil(fieldDeleteModal, locator.Invisible, 0); err != nil {
		return err
	}
	return d.waitForRefresh(before)
}

// snapshot reads all row cell texts as they are right now.
func (d *DashboardPage) snapshot() ([][]string, error) {
	rows, err := d.el.Element(fieldEmployeeRows)
	if err != nil {
		return nil, err
	}
	raw, err := rows.Locator.EvaluateAll(rowsScript)
	if err != nil {
		return nil, &locator.ElementError{Op: "snapshot", Field: rows.Field, Selector: rows.Selector, Err: err}
	}
	return parseCells(raw)
}

// loadedRows waits for the table to be visible and its rows to stop changing
// between two polls, bounded by the settle timeout.
func (d *DashboardPage) loadedRows() ([][]string, error) {
	if err := d.el.WaitUntil(fieldEmployeesTable, locator.Visible, 0); err != nil {
		return nil, err
	}
	return waitStable(d.snapshot, d.settle, d.el.PollInterval())
}

// waitForRefresh waits for the rows to differ from before. An edit that
// changes nothing visible is legal, so running out of settle time is not an error.
func (d *DashboardPage) waitForRefresh(before [][]string) error {
	changed, err := waitChanged(d.snapshot, before, d.settle, d.el.PollInterval())
	if err != nil {
		return err
	}
	if !changed {
		d.log.WithField("settle", d.settle.String()).Debug("table unchanged after submit")
	}
	return nil
}
