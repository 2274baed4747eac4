// Package locator maps symbolic field names to DOM selectors and resolves them
// against the live page on every call, waiting for readiness before interacting.
package locator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Strategy is how a locator value is interpreted.
type Strategy int

const (
	ByID Strategy = iota
	ByCSS
	ByClassName
)

func (s Strategy) String() string {
	switch s {
	case ByID:
		return "id"
	case ByCSS:
		return "css"
	case ByClassName:
		return "class"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Locator is a selector strategy plus its value.
type Locator struct {
	Strategy Strategy
	Value    string
}

func ID(id string) Locator { return Locator{Strategy: ByID, Value: id} }
func CSS(selector string) Locator { return Locator{Strategy: ByCSS, Value: selector} }
func ClassName(className string) Locator { return Locator{Strategy: ByClassName, Value: className} }

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Selector renders the locator as a CSS selector Playwright understands.
func (l Locator) Selector() string {
	switch l.Strategy {
	case ByID:
		if plainIdent.MatchString(l.Value) {
			return "#" + l.Value
		}
		return `[id="` + strings.ReplaceAll(l.Value, `"`, `\"`) + `"]`
	case ByClassName:
		return "." + strings.Join(strings.Fields(l.Value), ".")
	default:
		return l.Value
	}
}

func (l Locator) String() string {
	return l.Strategy.String() + "=" + l.Value
}

// Registry is the explicit field → locator table a page object builds in its constructor.
type Registry struct {
	fields map[string]Locator
}

func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]Locator)}
}

// Register adds a field. Empty names, empty values and duplicates are rejected.
func (r *Registry) Register(name string, l Locator) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("locator: empty field name")
	}
	if strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("locator: field %q has an empty %s value", name, l.Strategy)
	}
	if _, exists := r.fields[name]; exists {
		return fmt.Errorf("locator: field %q already registered", name)
	}
	r.fields[name] = l
	return nil
}

// MustRegister is Register for constructor-time tables; it panics on error.
func (r *Registry) MustRegister(name string, l Locator) *Registry {
	if err := r.Register(name, l); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (Locator, bool) {
	l, ok := r.fields[name]
	return l, ok
}

// Names returns the registered field names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
