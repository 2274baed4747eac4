// Package benefits computes the per-paycheck figures the dashboard is expected to show.
package benefits

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PaychecksPerYear = 26
	// Amounts in cents.
	AnnualSalary        Cents = 52000_00
	GrossPerPaycheck    Cents = 2000_00
	EmployeeAnnualCost  Cents = 1000_00
	DependantAnnualCost Cents = 500_00
)

// Cents is a money amount in hundredths of a dollar.
type Cents int64

// String renders the amount with two decimals and no grouping, e.g. 1961.54.
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Float is the amount in dollars, for JSON payloads.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// ParseMoney accepts table text such as "1961.54", "1,961.54" or "$38.46".
func ParseMoney(s string) (Cents, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, fmt.Errorf("parse money %q: empty", s)
	}
	neg := strings.HasPrefix(clean, "-")
	clean = strings.TrimPrefix(clean, "-")

	whole, frac, _ := strings.Cut(clean, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse money %q: more than two decimals", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	c := Cents(w*100 + f)
	if neg {
		c = -c
	}
	return c, nil
}

// Breakdown is one employee's expected pay figures.
type Breakdown struct {
	Dependants   int
	Salary       Cents
	Gross        Cents
	BenefitsCost Cents
	Net          Cents
}

// AnnualCost is the yearly benefit cost for an employee with the given dependants.
func AnnualCost(dependants int) Cents {
	return EmployeeAnnualCost + Cents(dependants)*DependantAnnualCost
}

// Expected returns the figures for an employee with the given number of dependants.
// The per-paycheck cost is rounded half up to the cent.
func Expected(dependants int) Breakdown {
	annual := AnnualCost(dependants)
	perPaycheck := (annual*2 + PaychecksPerYear) / (2 * PaychecksPerYear)
	return Breakdown{
		Dependants:   dependants,
		Salary:       AnnualSalary,
		Gross:        GrossPerPaycheck,
		BenefitsCost: perPaycheck,
		Net:          GrossPerPaycheck - perPaycheck,
	}
}

// Check compares rendered table text against the breakdown, allowing one cent
// of rounding difference per figure.
func (b Breakdown) Check(salary, gross, benefitsCost, net string) error {
	var mismatches []string
	compare := func(name, text string, want Cents) {
		got, err := ParseMoney(text)
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("%s: %v", name, err))
			return
		}
		if d := got - want; d > 1 || d < -1 {
			mismatches = append(mismatches, fmt.Sprintf("%s: got %s want %s", name, got, want))
		}
	}
	compare("salary", salary, b.Salary)
	compare("gross", gross, b.Gross)
	compare("benefits cost", benefitsCost, b.BenefitsCost)
	compare("net", net, b.Net)

	if len(mismatches) > 0 {
		return fmt.Errorf("benefits for %d dependants do not match: %s", b.Dependants, strings.Join(mismatches, "; "))
	}
	return nil
}
