package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Jira credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, _ []string) error {
	return runLogoutWithDeps(cmd, nil)
}

func runLogoutWithDeps(cmd *cobra.Command, deps *credDeps) error {
	deps, err := initCredDeps(deps)
	if err != nil {
		return err
	}

	store, err := deps.openStore()
	if err != nil {
		return err
	}
	if err := store.Delete(); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("Credentials removed from the OS secret store."))
	return err
}
