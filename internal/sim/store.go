package sim

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("employee not found")
	ErrValidation = errors.New("validation failed")
)

const (
	maxNameLength = 50
	maxDependants = 32
)

// Employee is the record kept by the simulator.
type Employee struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Dependants int       `json:"dependants"`
	CreatedAt  time.Time `json:"createdAt"`
	seq        uint64
}

// EmployeeInput is the writable part of an employee.
type EmployeeInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Dependants int    `json:"dependants"`
}

// ValidationError lists every rejected field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate trims the names and checks every field.
func (in *EmployeeInput) Validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	fields := map[string]string{}
	checkName := func(key, val string) {
		switch {
		case val == "":
			fields[key] = "is required"
		case len([]rune(val)) > maxNameLength:
			fields[key] = "must be at most 50 characters"
		}
	}
	checkName("firstName", in.FirstName)
	checkName("lastName", in.LastName)
	if in.Dependants < 0 || in.Dependants > maxDependants {
		fields["dependants"] = "must be between 0 and 32"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Store is an in-memory employee repository.
type Store struct {
	employees map[string]*Employee
	nextSeq   uint64
	mu        sync.RWMutex
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		employees: make(map[string]*Employee),
		now:       time.Now,
	}
}

// Create validates and stores a new employee.
func (s *Store) Create(in EmployeeInput) (Employee, error) {
	if err := in.Validate(); err != nil {
		return Employee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	e := &Employee{
		ID:         uuid.NewString(),
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Dependants: in.Dependants,
		CreatedAt:  s.now().UTC(),
		seq:        s.nextSeq,
	}
	s.employees[e.ID] = e
	return *e, nil
}

// Get retrieves an employee by id.
func (s *Store) Get(id string) (Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return *e, nil
}

// List returns every employee in creation order.
func (s *Store) List() []Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Update replaces the writable fields of an existing employee.
func (s *Store) Update(id string, in EmployeeInput) (Employee, error) {
	if err := in.Validate(); err != nil {
		return Employee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	e.FirstName = in.FirstName
	e.LastName = in.LastName
	e.Dependants = in.Dependants
	return *e, nil
}

// Delete removes an employee.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

// Count returns the number of stored employees.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.employees)
}
