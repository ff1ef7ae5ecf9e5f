package naming

import (
	"errors"
	"regexp"
)

// ErrNoTicketKey is returned when a branch name does not carry a ticket key.
var ErrNoTicketKey = errors.New("no ticket key in branch name")

// branchKeyPattern matches a key at the start of the branch name or at the
// start of any path segment, so "PROJ-1-x" and "feature/PROJ-1-x" both match
// but "hotfix-PROJ-1" does not.
var branchKeyPattern = regexp.MustCompile(`(?:^|/)([A-Z][A-Z0-9]+-[0-9]+)`)

var ticketKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]+-[0-9]+$`)

// ExtractTicketKey returns the first ticket key found in branchName.
// Examples:
//
//	PROJ-123-add-feature      -> PROJ-123
//	PROJ-123/add-feature      -> PROJ-123
//	feature/PROJ-123-thing    -> PROJ-123
//	hotfix-login-bug          -> "", false
func ExtractTicketKey(branchName string) (string, bool) {
	m := branchKeyPattern.FindStringSubmatch(branchName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsTicketKey reports whether s is exactly one ticket key, e.g. "CORE-42".
func IsTicketKey(s string) bool {
	return ticketKeyPattern.MatchString(s)
}
