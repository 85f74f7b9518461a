// Package device derives coarse device descriptions from User-Agent strings.
// The summary ends up in audit details, so it stays deliberately generic:
// browser family and OS only, never anything that could fingerprint a person.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Summary extracts a human-readable device display name from a User-Agent string.
// Returns format: "Browser on OS" (e.g., "Chrome on Mac OS X").
func Summary(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()

	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}
	os = strings.TrimSpace(os)
	if os == "" {
		os = "Unknown OS"
	}

	return browser + " on " + os
}
