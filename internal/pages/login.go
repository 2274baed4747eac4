package pages

import (
	"fmt"
	"strings"

	"github.com/benefitsqa/dashboard-e2e/internal/locator"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/playwright-community/playwright-go"
)

const (
	fieldUsername     = "username"
	fieldPassword     = "password"
	fieldLoginButton  = "loginButton"
	fieldErrorSummary = "errorSummary"
)

// validSummaryClass marks the validation summary as empty.
const validSummaryClass = "validation-summary-valid"

// LoginPage is the account login screen.
type LoginPage struct {
	src  locator.PageSource
	opts Options
	el   *locator.Resolver
}

// NewLoginPage binds a login page object to a session.
func NewLoginPage(src locator.PageSource, opts Options) *LoginPage {
	reg := locator.NewRegistry().
		MustRegister(fieldUsername, locator.ID("Username")).
		MustRegister(fieldPassword, locator.ID("Password")).
		MustRegister(fieldLoginButton, locator.CSS("button[type='submit']")).
		// The summary switches from -valid to -errors when the server rejects the form.
		MustRegister(fieldErrorSummary, locator.CSS(".text-danger.validation-summary-valid, .text-danger.validation-summary-errors"))

	return &LoginPage{
		src:  src,
		opts: opts,
		el:   locator.NewResolver(src, reg, opts.Timeouts, logging.For(opts.Logger, "login-page")),
	}
}

// NavigateToLogin loads the login URL and waits for the username field.
func (p *LoginPage) NavigateToLogin() error {
	page, err := p.el.Page()
	if err != nil {
		return err
	}
	if _, err := page.Goto(p.opts.LoginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		if strings.Contains(err.Error(), "ERR_TOO_MANY_REDIRECTS") {
			return fmt.Errorf("redirect loop navigating to %s: %w", p.opts.LoginURL, err)
		}
		return fmt.Errorf("navigate to %s: %w", p.opts.LoginURL, err)
	}
	return p.el.WaitUntil(fieldUsername, locator.Visible, 0)
}

// EnterUsername clears the username field and types into it.
func (p *LoginPage) EnterUsername(username string) error {
	return p.el.Type(fieldUsername, username)
}

// EnterPassword clears the password field and types into it.
func (p *LoginPage) EnterPassword(password string) error {
	return p.el.Type(fieldPassword, password)
}

// ClickLoginButton submits the form.
func (p *LoginPage) ClickLoginButton() error {
	return p.el.Click(fieldLoginButton)
}

// Login performs the whole login sequence and hands back the dashboard page
// object. It does not check that the login worked; use the dashboard's
// validators for that.
func (p *LoginPage) Login(username, password string) (*DashboardPage, error) {
	if err := p.NavigateToLogin(); err != nil {
		return nil, err
	}
	if err := p.EnterUsername(username); err != nil {
		return nil, err
	}
	if err := p.EnterPassword(password); err != nil {
		return nil, err
	}
	if err := p.ClickLoginButton(); err != nil {
		return nil, err
	}
	return NewDashboardPage(p.src, p.opts), nil
}

// LoginPageDisplayed reports whether the form is on screen. A non-nil error
// means the check itself could not be evaluated.
func (p *LoginPage) LoginPageDisplayed() (bool, error) {
	return p.el.AllVisible(fieldUsername, fieldPassword, fieldLoginButton)
}

// IsLoginPageDisplayed is LoginPageDisplayed with errors reported as false.
func (p *LoginPage) IsLoginPageDisplayed() bool {
	ok, err := p.LoginPageDisplayed()
	return p.el.Truthy("login page displayed", ok, err)
}

// ErrorDisplayed reports whether the validation summary shows errors.
func (p *LoginPage) ErrorDisplayed() (bool, error) {
	visible, err := p.el.IsVisible(fieldErrorSummary)
	if err != nil || !visible {
		return false, err
	}
	class, err := p.el.Attribute(fieldErrorSummary, "class")
	if err != nil {
		if locator.IsAbsent(err) {
			return false, nil
		}
		return false, err
	}
	return !strings.Contains(class, validSummaryClass), nil
}

// IsErrorDisplayed is ErrorDisplayed with errors reported as false.
func (p *LoginPage) IsErrorDisplayed() bool {
	ok, err := p.ErrorDisplayed()
	return p.el.Truthy("login error displayed", ok, err)
}

// ErrorMessage returns the validation summary text.
func (p *LoginPage) ErrorMessage() (string, error) {
	return p.el.Text(fieldErrorSummary)
}

func (p *LoginPage) PageTitle() (string, error) {
	page, err := p.el.Page()
	if err != nil {
		return "", err
	}
	return page.Title()
}

func (p *LoginPage) CurrentURL() (string, error) {
	page, err := p.el.Page()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}
