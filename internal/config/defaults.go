package config

import "time"

// DefaultConfig returns sensible defaults for all configuration.
func DefaultConfig() Config {
	return Config{
		Git: GitConfig{
			Remote:  "origin",
			Timeout: 5 * time.Second,
		},
		GitHub: GitHubConfig{
			Timeout: 30 * time.Second,
		},
		Jira: JiraConfig{
			EpicLinkField: "customfield_10014",
			Timeout:       15 * time.Second,
		},
		Keyring: KeyringConfig{
			Backends: []string{},
		},
		PR: PRConfig{
			RequireTicket:  false,
			TitleMaxLength: 72,
		},
	}
}
