package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the complete jh configuration.
type Config struct {
	Git     GitConfig     `toml:"git"`
	GitHub  GitHubConfig  `toml:"github"`
	Jira    JiraConfig    `toml:"jira"`
	Keyring KeyringConfig `toml:"keyring"`
	PR      PRConfig      `toml:"pr"`
}

// Validate checks that all config values are valid.
// Returns an error describing the first invalid value found.
func (c Config) Validate() error {
	if c.Git.Timeout < 0 {
		return errors.New("git.timeout cannot be negative")
	}
	if c.GitHub.Timeout < 0 {
		return errors.New("github.timeout cannot be negative")
	}
	if c.Jira.Timeout < 0 {
		return errors.New("jira.timeout cannot be negative")
	}
	if c.PR.TitleMaxLength < 0 {
		return errors.New("pr.title_max_length cannot be negative")
	}
	if c.PR.TitleMaxLength > 0 && c.PR.TitleMaxLength < minTitleLength {
		return fmt.Errorf("pr.title_max_length must be 0 or at least %d", minTitleLength)
	}
	for _, b := range c.Keyring.Backends {
		if !isKnownBackend(b) {
			return fmt.Errorf("keyring.backends: unknown backend %q", b)
		}
	}
	return nil
}

// minTitleLength leaves room for a ticket key prefix and an ellipsis.
const minTitleLength = 20

// GitConfig configures git command execution.
type GitConfig struct {
	Remote  string        `toml:"remote"`  // Fallback push remote when remote.pushDefault is unset
	Timeout time.Duration `toml:"timeout"` // Timeout for git commands (e.g., "5s")
}

// GitHubConfig configures gh command execution.
type GitHubConfig struct {
	Timeout time.Duration `toml:"timeout"` // gh pr create talks to the network, so this is longer than git's
}

// JiraConfig configures the Jira REST client.
type JiraConfig struct {
	// EpicLinkField is the custom field holding the epic key in classic projects.
	// Next-gen projects use the parent field instead. Empty disables the lookup.
	EpicLinkField string        `toml:"epic_link_field"`
	Timeout       time.Duration `toml:"timeout"`
}

// KeyringConfig selects the OS secret store backend.
type KeyringConfig struct {
	Backends []string `toml:"backends"` // empty = let the keyring library pick
	FileDir  string   `toml:"file_dir"` // only used by the "file" backend
}

// PRConfig configures pull request composition.
type PRConfig struct {
	// RequireTicket makes a branch without a ticket key an error instead of a warning.
	RequireTicket  bool `toml:"require_ticket"`
	TitleMaxLength int  `toml:"title_max_length"` // 0 = no truncation
}

var knownBackends = []string{"keychain", "secret-service", "kwallet", "keyctl", "wincred", "pass", "file"}

func isKnownBackend(name string) bool {
	for _, b := range knownBackends {
		if b == name {
			return true
		}
	}
	return false
}
