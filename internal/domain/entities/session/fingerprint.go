package session

import (
	"fmt"
	"strings"
)

// ParseUserAgent extracts a coarse browser/os/device classification from a
// raw user-agent header. Chrome is checked before Safari because Chrome
// user agents contain the Safari token.
func ParseUserAgent(userAgent string) (browser, os, deviceType string) {
	ua := strings.ToLower(userAgent)

	browser = "unknown"
	switch {
	case strings.Contains(ua, "edge"):
		browser = "edge"
	case strings.Contains(ua, "chrome"):
		browser = "chrome"
	case strings.Contains(ua, "firefox"):
		browser = "firefox"
	case strings.Contains(ua, "safari"):
		browser = "safari"
	}

	os = "unknown"
	switch {
	case strings.Contains(ua, "windows"):
		os = "windows"
	case strings.Contains(ua, "android"):
		os = "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		os = "ios"
	case strings.Contains(ua, "mac"):
		os = "macos"
	case strings.Contains(ua, "linux"):
		os = "linux"
	}

	deviceType = "desktop"
	switch {
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "ipad"):
		deviceType = "tablet"
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "android"),
		strings.Contains(ua, "iphone"):
		deviceType = "mobile"
	}

	return browser, os, deviceType
}

// Fingerprint derives the coarse, non-unique device identifier used to
// merge likely-duplicate sessions.
func Fingerprint(userAgent, ipAddress string) string {
	browser, os, _ := ParseUserAgent(userAgent)
	if ipAddress == "" {
		ipAddress = "unknown"
	}
	return fmt.Sprintf("%s-%s-%s", ipAddress, browser, os)
}

// ReferrerSource classifies a referrer header into a traffic source label
func ReferrerSource(referrer string) string {
	if referrer == "" || referrer == "direct" {
		return "direct"
	}
	ref := strings.ToLower(referrer)
	for _, source := range []string{"google", "facebook", "twitter", "instagram", "reddit", "tiktok"} {
		if strings.Contains(ref, source) {
			return source
		}
	}
	return "other"
}
