package cmd

import (
	"context"

	"github.com/jmcampanini/jh/internal/config"
	"github.com/jmcampanini/jh/internal/credentials"
	"github.com/jmcampanini/jh/internal/jira"
	"github.com/spf13/cobra"
)

// storeOpener opens the credential store lazily. The file backend prompts
// for a passphrase, so commands that never touch credentials must not open it.
type storeOpener func() (credentials.Store, error)

// trackerFactory builds a Jira client for a set of credentials.
type trackerFactory func(creds credentials.Credentials) jira.Tracker

func keyringStoreOpener(cfg config.Config) storeOpener {
	return func() (credentials.Store, error) {
		return credentials.NewKeyringStore(cfg.Keyring)
	}
}

func jiraTrackerFactory(cfg config.Config) trackerFactory {
	return func(creds credentials.Credentials) jira.Tracker {
		return jira.New(creds, jira.Options{
			EpicLinkField: cfg.Jira.EpicLinkField,
			Timeout:       cfg.Jira.Timeout,
		})
	}
}

// commandContext returns the command's context, or Background for commands
// built directly in tests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
