package pages

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/locator"
)

// Column positions of the employee table, zero based.
const (
	colID = iota
	colFirstName
	colLastName
	colDependants
	colSalary
	colGross
	colBenefitsCost
	colNet
	colActions
)

// NoEmployeesText is the placeholder shown when the table is empty.
const NoEmployeesText = "No employees found"

// rowsScript reads every body row's cell texts in one round trip so the
// snapshot cannot straddle a table refresh.
const rowsScript = `rows => rows.map(r => Array.from(r.querySelectorAll('td')).map(td => (td.innerText || td.textContent || '').trim()))`

// Employee is one table row as rendered.
type Employee struct {
	Row          int
	ID           string
	FirstName    string
	LastName     string
	Dependants   int
	Salary       string
	Gross        string
	BenefitsCost string
	Net          string
}

// FullName is "First Last".
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func parseCells(raw interface{}) ([][]string, error) {
	list, ok := raw.([]interface{})
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected table snapshot type %T", raw)
	}
	rows := make([][]string, 0, len(list))
	for i, r := range list {
		cellsRaw, ok := r.([]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected row %d type %T", i, r)
		}
		cells := make([]string, len(cellsRaw))
		for j, c := range cellsRaw {
			s, _ := c.(string)
			cells[j] = strings.TrimSpace(s)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func isPlaceholder(rows [][]string) bool {
	return len(rows) == 1 && strings.Contains(strings.Join(rows[0], " "), NoEmployeesText)
}

func countEmployees(rows [][]string) int {
	if isPlaceholder(rows) {
		return 0
	}
	return len(rows)
}

// matchRows returns every row whose name cells equal first and last exactly.
func matchRows(rows [][]string, first, last string) []int {
	var idx []int
	for i, cells := range rows {
		if len(cells) < 3 {
			continue
		}
		if cells[colFirstName] == first && cells[colLastName] == last {
			idx = append(idx, i)
		}
	}
	return idx
}

func firstMatch(rows [][]string, first, last string) int {
	if m := matchRows(rows, first, last); len(m) > 0 {
		return m[0]
	}
	return -1
}

func rowByID(rows [][]string, id string) int {
	for i, cells := range rows {
		if len(cells) > colID && cells[colID] == id {
			return i
		}
	}
	return -1
}

func rowsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func employeesFrom(rows [][]string) []Employee {
	if isPlaceholder(rows) {
		return nil
	}
	out := make([]Employee, 0, len(rows))
	for i, cells := range rows {
		if len(cells) < 3 {
			continue
		}
		deps, _ := strconv.Atoi(cell(cells, colDependants))
		out = append(out, Employee{
			Row:          i,
			ID:           cell(cells, colID),
			FirstName:    cell(cells, colFirstName),
			LastName:     cell(cells, colLastName),
			Dependants:   deps,
			Salary:       cell(cells, colSalary),
			Gross:        cell(cells, colGross),
			BenefitsCost: cell(cells, colBenefitsCost),
			Net:          cell(cells, colNet),
		})
	}
	return out
}

// waitStable reads the rows until two consecutive reads are identical and
// non-empty. An empty table never counts as stable. On expiry the last read
// is returned without error; a read error aborts the wait.
func waitStable(read func() ([][]string, error), timeout, interval time.Duration) ([][]string, error) {
	var last [][]string
	seen := false
	err := locator.Poll(timeout, interval, func() (bool, error) {
		rows, err := read()
		if err != nil {
			return false, err
		}
		if seen && len(rows) > 0 && rowsEqual(rows, last) {
			return true, nil
		}
		last, seen = rows, true
		return false, nil
	})
	if err != nil && !errors.Is(err, locator.ErrTimeout) {
		return nil, err
	}
	return last, nil
}

// waitChanged reads the rows until they are non-empty and differ from before.
// It reports whether a change was seen; expiry is not an error.
func waitChanged(read func() ([][]string, error), before [][]string, timeout, interval time.Duration) (bool, error) {
	err := locator.Poll(timeout, interval, func() (bool, error) {
		rows, err := read()
		if err != nil {
			return false, err
		}
		return len(rows) > 0 && !rowsEqual(rows, before), nil
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, locator.ErrTimeout):
		return false, nil
	default:
		return false, err
	}
}
