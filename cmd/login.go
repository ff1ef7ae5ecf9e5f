package cmd

import (
	"fmt"

	"github.com/jmcampanini/jh/internal/credentials"
	"github.com/spf13/cobra"
)

const defaultServerURL = "https://yourcompany.atlassian.net"

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Jira credentials in the OS secret store",
	Long: `Prompt for the Jira server URL, account email and API token, verify them
against Jira and store them in the OS secret store.

Create an API token at https://id.atlassian.com/manage-profile/security/api-tokens`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

// credDeps holds injectable dependencies of the credential commands.
type credDeps struct {
	openStore  storeOpener
	newTracker trackerFactory
}

func initCredDeps(deps *credDeps) (*credDeps, error) {
	if deps != nil {
		return deps, nil
	}
	env, err := loadEnv()
	if err != nil {
		return nil, err
	}
	return &credDeps{
		openStore:  keyringStoreOpener(env.cfg),
		newTracker: jiraTrackerFactory(env.cfg),
	}, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	return runLoginWithDeps(cmd, nil)
}

func runLoginWithDeps(cmd *cobra.Command, deps *credDeps) error {
	deps, err := initCredDeps(deps)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, headingStyle.Render("Jira authentication setup"))
	_, _ = fmt.Fprintln(out)

	p := newPrompter(cmd)
	server, err := p.ask("Jira server URL", defaultServerURL)
	if err != nil {
		return err
	}
	email, err := p.ask("Email address", "")
	if err != nil {
		return err
	}
	token, err := p.askSecret("API token")
	if err != nil {
		return err
	}

	creds := credentials.Credentials{
		ServerURL: credentials.NormalizeServerURL(server),
		Email:     email,
		APIToken:  token,
	}
	if err := verifyAndSave(cmd, deps, creds); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Credentials stored in the OS secret store for %s\n", creds.ServerURL)
	return nil
}

// verifyAndSave checks creds against Jira and stores them only when they work.
func verifyAndSave(cmd *cobra.Command, deps *credDeps, creds credentials.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, dimStyle.Render("Validating credentials..."))

	user, err := deps.newTracker(creds).Myself(commandContext(cmd))
	if err != nil {
		return err
	}

	store, err := deps.openStore()
	if err != nil {
		return err
	}
	if err := store.Save(creds); err != nil {
		return err
	}

	name := user.DisplayName
	if name == "" {
		name = creds.Email
	}
	_, _ = fmt.Fprintln(out, okStyle.Render("Authenticated as "+name))
	return nil
}
