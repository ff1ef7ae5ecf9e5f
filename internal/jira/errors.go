package jira

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth means the credentials were rejected (401/403).
	ErrAuth = errors.New("jira authentication failed")

	// ErrNotFound means the issue does not exist or is not visible (404).
	ErrNotFound = errors.New("jira issue not found")

	// ErrRateLimited means Jira asked us to slow down (429).
	ErrRateLimited = errors.New("jira rate limit exceeded")

	// ErrNetwork means Jira could not be reached or did not answer in time.
	ErrNetwork = errors.New("jira unreachable")
)

// APIError is a non-2xx answer from the Jira REST API.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter string // raw Retry-After header, only set for 429
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("jira API returned %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter != "" {
		msg += " (retry after " + e.RetryAfter + "s)"
	}
	return msg
}

// Unwrap maps the status code onto the package's sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// errorResponse is Jira's standard error body.
type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
