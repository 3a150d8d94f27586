// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidateBackendURL checks that the forecasting backend URL is an absolute
// http(s) URL without query or fragment.
func ValidateBackendURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("backend url cannot be empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("backend url %q has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("backend url %q must not carry a query or fragment", raw)
	}
	return nil
}

// ValidateChartSize checks chart dimensions.
func ValidateChartSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", width, height)
	}
	return nil
}

// ValidateConfiguration collects warnings for settings that are legal but
// likely unintended.
func ValidateConfiguration(backendTimeout, sessionTTL time.Duration) []string {
	var warnings []string

	if backendTimeout > 0 && backendTimeout < 5*time.Second {
		warnings = append(warnings, fmt.Sprintf("backend timeout %s is short for model training; requests may fail", backendTimeout))
	}
	if sessionTTL > 0 && sessionTTL < time.Minute {
		warnings = append(warnings, fmt.Sprintf("session ttl %s expires page sessions quickly; selected files will be lost", sessionTTL))
	}

	if backendTimeout > 0 && sessionTTL > 0 && backendTimeout >= sessionTTL {
		warnings = append(warnings, fmt.Sprintf("backend timeout %s is not shorter than session ttl %s; a session can expire while its forecast is still running", backendTimeout, sessionTTL))
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
