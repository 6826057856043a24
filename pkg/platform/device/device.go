package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Label extracts a human-readable device name from a User-Agent string,
// in the form "Browser on OS" (e.g. "Chrome on macOS"). Used to make audit
// lines readable; never used for authorization decisions.
func Label(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := strings.TrimSpace(ua.OSInfo().Name)
	if os == "" {
		os = "Unknown OS"
	}

	return browser + " on " + os
}
