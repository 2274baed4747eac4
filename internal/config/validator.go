package config

import (
	"fmt"
	"net/url"
	"strings"
)

var supportedBrowsers = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
}

// Validate checks the values the suite cannot run without.
func (c *Config) Validate() error {
	var errs []string

	if !supportedBrowsers[strings.ToLower(c.Browser.Name)] {
		errs = append(errs, fmt.Sprintf("browser.name %q is not one of chromium, firefox, webkit", c.Browser.Name))
	}
	if c.Target.LoginURL != "" {
		u, err := url.Parse(c.Target.LoginURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("target.login_url %q must be an absolute http(s) URL", c.Target.LoginURL))
		}
	}
	if c.Timeouts.Element <= 0 {
		errs = append(errs, "timeouts.element must be positive")
	}
	if c.Timeouts.Poll <= 0 {
		errs = append(errs, "timeouts.poll must be positive")
	}
	if c.Timeouts.Settle < 0 {
		errs = append(errs, "timeouts.settle must not be negative")
	}
	if c.Sim.BasePath != "" && !strings.HasPrefix(c.Sim.BasePath, "/") {
		errs = append(errs, "sim.base_path must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
