package sparkapi

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedDash  = regexp.MustCompile(`-+`)
	slugSeparator = strings.NewReplacer(" ", "-", "_", "-")
)

// Slug normalises s into a storage-safe cache key segment: lower case, with
// every run of characters outside [a-z0-9-] collapsed to a single "-" and
// leading and trailing dashes removed.
//
// Examples:
//
//	"Living Room"   → "living-room"
//	"temp_outside"  → "temp-outside"
//	"53FF6F06"      → "53ff6f06"
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugSeparator.Replace(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = repeatedDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Cache keys.
const (
	keyDevices        = "devices"
	keyDevicePrefix   = "device:"
	keyVariablePrefix = "variable:"
)

func deviceKey(deviceID string) string {
	return keyDevicePrefix + Slug(deviceID)
}

// variableKey ignores deviceID unless scoped is set.
func variableKey(deviceID, variable string, scoped bool) string {
	if scoped {
		return keyVariablePrefix + Slug(deviceID) + ":" + Slug(variable)
	}
	return keyVariablePrefix + Slug(variable)
}
