package cmd

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "n/a"

var (
	configFileFlag string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "jh",
	Short: "Open GitHub pull requests described from Jira tickets",
	Long: `jh links Jira and GitHub.

It reads the Jira ticket key from the current branch name, fetches the
ticket, and opens a pull request whose title and body reference it.

  jh login          store Jira credentials in the OS secret store
  jh pr --dry-run   preview the pull request for the current branch
  jh pr             push the branch and open the pull request`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		configureLogging(cmd.ErrOrStderr(), verboseFlag)
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "Path to an additional jh.toml applied last")
}

// configureLogging points the default logger at w. Subsystem loggers are
// derived from the default one, so this must run before any client is created.
func configureLogging(w io.Writer, verbose bool) {
	logger := clog.NewWithOptions(w, clog.Options{
		Level:           clog.WarnLevel,
		ReportTimestamp: verbose,
	})
	if verbose {
		logger.SetLevel(clog.DebugLevel)
	}
	clog.SetDefault(logger)
}

// Execute runs the root command and reports a failure as a single line on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", oneLine(err.Error()))
	}
	return err
}
