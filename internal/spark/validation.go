package spark

import (
	"fmt"
	"regexp"
)

const (
	maxIDLength    = 64
	maxTitleLength = 100

	// maxCacheSeconds is one week.
	maxCacheSeconds = 7 * 24 * 3600

	idPattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var idRegex = regexp.MustCompile(idPattern)

// ValidateSpark checks a spark definition.
// Returns an error wrapping ErrInvalidSpark describing the first failure.
func ValidateSpark(s Spark) error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSpark)
	}
	if len(s.ID) > maxIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidSpark, maxIDLength)
	}
	if !idRegex.MatchString(s.ID) {
		return fmt.Errorf("%w: id %q must be lowercase alphanumeric with single hyphens", ErrInvalidSpark, s.ID)
	}
	if len(s.Title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidSpark, maxTitleLength)
	}
	if s.CoreID == "" {
		return fmt.Errorf("%w: %s: core_id is required", ErrInvalidSpark, s.ID)
	}
	if s.Variable == "" {
		return fmt.Errorf("%w: %s: variable is required", ErrInvalidSpark, s.ID)
	}
	if s.CacheSeconds < 0 || s.CacheSeconds > maxCacheSeconds {
		return fmt.Errorf("%w: %s: cache_seconds must be between 0 and %d", ErrInvalidSpark, s.ID, maxCacheSeconds)
	}
	return nil
}
