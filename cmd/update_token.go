package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateTokenCmd = &cobra.Command{
	Use:   "update-token",
	Short: "Replace the stored Jira API token",
	Long:  `Prompt for a new Jira API token, verify it and store it, keeping the stored server URL and email.`,
	Args:  cobra.NoArgs,
	RunE:  runUpdateToken,
}

func init() {
	rootCmd.AddCommand(updateTokenCmd)
}

func runUpdateToken(cmd *cobra.Command, _ []string) error {
	return runUpdateTokenWithDeps(cmd, nil)
}

func runUpdateTokenWithDeps(cmd *cobra.Command, deps *credDeps) error {
	deps, err := initCredDeps(deps)
	if err != nil {
		return err
	}

	store, err := deps.openStore()
	if err != nil {
		return err
	}
	// Fails with credentials.ErrNotFound when there is nothing to update
	creds, err := store.Load()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updating token for %s\n", creds.String())

	token, err := newPrompter(cmd).askSecret("New API token")
	if err != nil {
		return err
	}
	creds.APIToken = token

	return verifyAndSave(cmd, deps, creds)
}
