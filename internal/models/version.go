package models

import (
	"regexp"
	"strings"
)

// LatestVersion asks the analysis service for the most recent patch.
const LatestVersion = "latest"

var patchVersionRe = regexp.MustCompile(`^\d+\.\d+$`)

// IsVersionValid reports whether input, once trimmed, is "latest" or a
// major.minor patch number.
func IsVersionValid(input string) bool {
	trimmed := strings.TrimSpace(input)
	return trimmed == LatestVersion || patchVersionRe.MatchString(trimmed)
}

// ParseVersion trims input and validates it. The returned token is what gets
// sent to the analysis service.
func ParseVersion(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if !IsVersionValid(trimmed) {
		return "", &ValidationError{Field: "version", Value: input, Err: ErrInvalidVersion}
	}
	return trimmed, nil
}
