package locator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// PageSource yields the live page for every call. driver.Session implements it.
type PageSource interface {
	Page() (playwright.Page, error)
}

// Element is a lazily evaluated handle. The underlying Playwright locator
// re-queries the DOM on each use, so an Element never points at a detached node.
type Element struct {
	Field    string
	Selector string
	Locator  playwright.Locator
}

// Resolver resolves registered fields against the current page.
type Resolver struct {
	src      PageSource
	registry *Registry
	timeout  time.Duration
	poll     time.Duration
	log      *logrus.Entry
}

func NewResolver(src PageSource, registry *Registry, timeouts config.TimeoutsConfig, log *logrus.Entry) *Resolver {
	return &Resolver{
		src:      src,
		registry: registry,
		timeout:  timeouts.Element,
		poll:     timeouts.Poll,
		log:      log,
	}
}

// Timeout is the bounded wait applied when no explicit timeout is given.
func (r *Resolver) Timeout() time.Duration { return r.timeout }

// PollInterval is the cooperative polling interval.
func (r *Resolver) PollInterval() time.Duration { return r.poll }

// Page returns the live page from the session.
func (r *Resolver) Page() (playwright.Page, error) {
	return r.src.Page()
}

// Element builds a handle for a registered field without touching the DOM.
func (r *Resolver) Element(field string) (Element, error) {
	l, ok := r.registry.Lookup(field)
	if !ok {
		return Element{}, &ElementError{Op: "lookup", Field: field, Err: ErrUnknownField}
	}
	page, err := r.src.Page()
	if err != nil {
		return Element{}, &ElementError{Op: "lookup", Field: field, Selector: l.Selector(), Err: err}
	}
	sel := l.Selector()
	return Element{Field: field, Selector: sel, Locator: page.Locator(sel)}, nil
}

// Within scopes a locator under a parent element, e.g. an icon inside a table cell.
func (r *Resolver) Within(parent Element, field string, l Locator) Element {
	sel := l.Selector()
	return Element{
		Field:    parent.Field + "." + field,
		Selector: parent.Selector + " >> " + sel,
		Locator:  parent.Locator.Locator(sel),
	}
}

// Resolve waits up to the element timeout for the field to be attached to the DOM.
func (r *Resolver) Resolve(field string) (Element, error) {
	el, err := r.Element(field)
	if err != nil {
		return Element{}, err
	}
	err = el.Locator.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(ms(r.timeout)),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			err = ErrElementNotFound
		}
		return Element{}, &ElementError{Op: "resolve", Field: el.Field, Selector: el.Selector, Err: err}
	}
	return el, nil
}

// WaitUntil blocks until the field satisfies cond or timeout elapses.
func (r *Resolver) WaitUntil(field string, cond Condition, timeout time.Duration) error {
	el, err := r.Element(field)
	if err != nil {
		return err
	}
	return r.Await(el, cond, timeout)
}

// Await is WaitUntil for an element that is not in the registry.
func (r *Resolver) Await(el Element, cond Condition, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = r.timeout
	}
	start := time.Now()
	var err error
	switch cond {
	case Visible:
		err = r.waitState(el, playwright.WaitForSelectorStateVisible, timeout)
	case Invisible:
		err = r.waitState(el, playwright.WaitForSelectorStateHidden, timeout)
	case Attached:
		err = r.waitState(el, playwright.WaitForSelectorStateAttached, timeout)
	case Clickable:
		if err = r.waitState(el, playwright.WaitForSelectorStateVisible, timeout); err != nil {
			break
		}
		remaining := timeout - time.Since(start)
		err = Poll(remaining, r.poll, enabledCheck(el.Locator, r.poll))
	default:
		err = fmt.Errorf("unsupported condition %v", cond)
	}
	if err != nil {
		return &ElementError{Op: "wait", Field: el.Field, Selector: el.Selector, Condition: cond.String(), Err: err}
	}
	r.entry(el).WithField("condition", cond.String()).WithField("waited", time.Since(start).String()).Trace("ready")
	return nil
}

// enabledCheck reports whether the first match is enabled. Only a closed
// target is fatal; any other failure counts as not enabled yet.
func enabledCheck(loc playwright.Locator, poll time.Duration) func() (bool, error) {
	return func() (bool, error) {
		enabled, err := loc.First().IsEnabled(playwright.LocatorIsEnabledOptions{
			Timeout: playwright.Float(ms(poll)),
		})
		if err != nil && errors.Is(err, playwright.ErrTargetClosed) {
			return false, err
		}
		return err == nil && enabled, nil
	}
}

func (r *Resolver) waitState(el Element, state *playwright.WaitForSelectorState, timeout time.Duration) error {
	err := el.Locator.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil && errors.Is(err, playwright.ErrTimeout) {
		return ErrTimeout
	}
	return err
}

// Click waits for the field to be clickable, then clicks it.
func (r *Resolver) Click(field string) error {
	el, err := r.Element(field)
	if err != nil {
		return err
	}
	return r.ClickElement(el)
}

// ClickElement waits for el to be clickable, then clicks it.
func (r *Resolver) ClickElement(el Element) error {
	if err := r.Await(el, Clickable, r.timeout); err != nil {
		return err
	}
	r.entry(el).Debug("click")
	err := el.Locator.First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(r.timeout)),
	})
	return r.actionErr("click", el, err)
}

// Type clears the field and types text into it, after waiting for clickability.
func (r *Resolver) Type(field, text string) error {
	el, err := r.Element(field)
	if err != nil {
		return err
	}
	if err := r.Await(el, Clickable, r.timeout); err != nil {
		return err
	}
	r.entry(el).WithField("length", len(text)).Debug("type")
	target := el.Locator.First()
	if err := target.Clear(playwright.LocatorClearOptions{Timeout: playwright.Float(ms(r.timeout))}); err != nil {
		return r.actionErr("clear", el, err)
	}
	err = target.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Timeout: playwright.Float(ms(r.timeout)),
	})
	return r.actionErr("type", el, err)
}

// Text waits for the field to be visible and returns its trimmed rendered text.
func (r *Resolver) Text(field string) (string, error) {
	el, err := r.Element(field)
	if err != nil {
		return "", err
	}
	if err := r.Await(el, Visible, r.timeout); err != nil {
		return "", err
	}
	text, err := el.Locator.First().InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(ms(r.timeout)),
	})
	if err != nil {
		return "", r.actionErr("read", el, err)
	}
	return strings.TrimSpace(text), nil
}

// Attribute returns an attribute of the first match without waiting for visibility.
func (r *Resolver) Attribute(field, name string) (string, error) {
	el, err := r.Resolve(field)
	if err != nil {
		return "", err
	}
	val, err := el.Locator.First().GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(ms(r.timeout)),
	})
	if err != nil {
		return "", r.actionErr("attribute", el, err)
	}
	return val, nil
}

// IsVisible checks visibility right now. A missing element is (false, nil).
func (r *Resolver) IsVisible(field string) (bool, error) {
	el, err := r.Element(field)
	if err != nil {
		return false, err
	}
	visible, err := el.Locator.First().IsVisible()
	if err != nil {
		return false, &ElementError{Op: "visible", Field: el.Field, Selector: el.Selector, Err: err}
	}
	return visible, nil
}

// AllVisible is true when every field is visible right now.
func (r *Resolver) AllVisible(fields ...string) (bool, error) {
	for _, f := range fields {
		ok, err := r.IsVisible(f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Truthy collapses a tri-state check into the best-effort boolean used by the
// Is* predicates. The inconclusive case is logged so it is not lost entirely.
func (r *Resolver) Truthy(check string, ok bool, err error) bool {
	if err != nil {
		r.log.WithError(err).WithField("check", check).Debug("check inconclusive, reporting false")
		return false
	}
	return ok
}

func (r *Resolver) actionErr(op string, el Element, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		err = fmt.Errorf("%w: %v", ErrNotInteractable, err)
	}
	return &ElementError{Op: op, Field: el.Field, Selector: el.Selector, Err: err}
}

func (r *Resolver) entry(el Element) *logrus.Entry {
	return r.log.WithFields(logrus.Fields{"field": el.Field, "selector": el.Selector})
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
