// Package credentials persists Jira credentials in the OS secret store.
package credentials

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrNotFound means no credentials are stored; the user has not run `jh login`.
	ErrNotFound = errors.New("no stored credentials, run 'jh login' first")

	// ErrAccessDenied means the OS secret store could not be opened, unlocked, read or written.
	ErrAccessDenied = errors.New("secret store access denied")
)

// Credentials are the values needed to talk to a Jira server.
type Credentials struct {
	ServerURL string `json:"server_url"`
	Email     string `json:"email"`
	APIToken  string `json:"api_token"`
}

// Validate checks that all fields are present and the server URL is usable.
func (c Credentials) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server URL is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("server URL %q must start with https:// or http://", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL %q has no host", c.ServerURL)
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	if c.APIToken == "" {
		return errors.New("API token is required")
	}
	return nil
}

// String never includes the token.
func (c Credentials) String() string {
	return fmt.Sprintf("%s (%s)", c.ServerURL, c.Email)
}

// NormalizeServerURL trims surrounding whitespace and trailing slashes.
func NormalizeServerURL(server string) string {
	return strings.TrimRight(strings.TrimSpace(server), "/")
}

// Store persists a single set of credentials.
type Store interface {

	// Save writes creds, replacing any existing credentials.
	Save(creds Credentials) error

	// Load returns the stored credentials.
	// Returns ErrNotFound if nothing is stored.
	Load() (Credentials, error)

	// Delete removes the stored credentials. Deleting nothing is not an error.
	Delete() error
}
