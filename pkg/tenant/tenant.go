package tenant

import (
	"regexp"
	"strings"
)

const (
	// DefaultID is the tenant every request falls back to when no valid
	// identifier can be resolved. Row-level security policies must still
	// hold for it: the default tenant is a real tenant, not a bypass.
	DefaultID = "default"

	// MaxIDLength bounds tenant identifiers to keep them usable as
	// database session values and log fields.
	MaxIDLength = 50
)

// idPattern is the full character class allowed in a normalized identifier.
var idPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Sanitize normalizes a candidate tenant identifier: trims surrounding
// whitespace and lower-cases it. It returns the normalized identifier and
// true when the result is valid, or "" and false when the candidate is
// empty, contains characters outside [a-z0-9_-], or exceeds MaxIDLength.
func Sanitize(candidate string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(candidate))
	if id == "" || len(id) > MaxIDLength || !idPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// IsValid reports whether id is already a normalized, valid identifier.
func IsValid(id string) bool {
	s, ok := Sanitize(id)
	return ok && s == id
}
