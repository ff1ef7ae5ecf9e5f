package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jmcampanini/jh/internal/credentials"
	"github.com/jmcampanini/jh/internal/git"
	"github.com/jmcampanini/jh/internal/github"
	"github.com/jmcampanini/jh/internal/naming"
	"github.com/spf13/cobra"
)

// errJiraUnavailable makes `jh status` exit non-zero; the table already says why.
var errJiraUnavailable = errors.New("jira credentials are missing or invalid")

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Jira, GitHub CLI and git status",
	Long: `Show whether Jira credentials are stored and valid, whether the GitHub CLI
is installed and authenticated, and which ticket the current branch refers to.

The stored Jira credentials are verified with a live request. The command
exits non-zero when they are missing or rejected.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return runStatusWithDeps(cmd, nil)
}

// statusDeps holds injectable dependencies for testing. git is nil outside a repository.
type statusDeps struct {
	gh         github.GitHub
	git        git.Git
	gitErr     error // why git is nil, when it is not simply "outside a repository"
	openStore  storeOpener
	newTracker trackerFactory
}

type statusRow struct {
	check  string
	ok     *bool // nil = informational
	detail string
}

func runStatusWithDeps(cmd *cobra.Command, deps *statusDeps) error {
	deps, err := initStatusDeps(deps)
	if err != nil {
		return err
	}

	var rows []statusRow
	jiraRows, jiraOK := jiraStatus(cmd, deps)
	rows = append(rows, jiraRows...)
	rows = append(rows, githubStatus(deps.gh)...)
	rows = append(rows, gitStatus(deps.git, deps.gitErr)...)

	if err := renderStatus(cmd, rows); err != nil {
		return err
	}
	if !jiraOK {
		return errJiraUnavailable
	}
	return nil
}

func initStatusDeps(deps *statusDeps) (*statusDeps, error) {
	if deps != nil {
		return deps, nil
	}

	env, err := loadEnv()
	if err != nil {
		return nil, err
	}

	resolved := &statusDeps{
		gh:         github.New(env.cwd, env.cfg.GitHub.Timeout),
		gitErr:     env.gitErr,
		openStore:  keyringStoreOpener(env.cfg),
		newTracker: jiraTrackerFactory(env.cfg),
	}
	if env.inRepo {
		resolved.git = git.New(false, env.cwd, env.cfg.Git.Timeout)
	}
	return resolved, nil
}

func jiraStatus(cmd *cobra.Command, deps *statusDeps) ([]statusRow, bool) {
	store, err := deps.openStore()
	if err != nil {
		return []statusRow{{check: "Jira", ok: boolPtr(false), detail: oneLine(err.Error())}}, false
	}

	creds, err := store.Load()
	if errors.Is(err, credentials.ErrNotFound) {
		return []statusRow{{check: "Jira", ok: boolPtr(false), detail: "not authenticated, run 'jh login'"}}, false
	}
	if err != nil {
		return []statusRow{{check: "Jira", ok: boolPtr(false), detail: oneLine(err.Error())}}, false
	}

	rows := []statusRow{{check: "Jira server", detail: creds.String()}}

	user, err := deps.newTracker(creds).Myself(commandContext(cmd))
	if err != nil {
		return append(rows, statusRow{
			check:  "Jira",
			ok:     boolPtr(false),
			detail: "credentials stored but not working, run 'jh login' or 'jh update-token': " + oneLine(err.Error()),
		}), false
	}

	return append(rows, statusRow{check: "Jira", ok: boolPtr(true), detail: "authenticated as " + user.DisplayName}), true
}

func githubStatus(gh github.GitHub) []statusRow {
	err := gh.Validate()
	switch {
	case err == nil:
		return []statusRow{{check: "GitHub CLI", ok: boolPtr(true), detail: "installed and authenticated"}}
	case errors.Is(err, github.ErrNotInstalled):
		return []statusRow{{check: "GitHub CLI", ok: boolPtr(false), detail: "not installed, see https://cli.github.com/"}}
	case errors.Is(err, github.ErrNotAuthenticated):
		return []statusRow{{check: "GitHub CLI", ok: boolPtr(false), detail: "not authenticated, run 'gh auth login'"}}
	default:
		return []statusRow{{check: "GitHub CLI", ok: boolPtr(false), detail: oneLine(err.Error())}}
	}
}

func gitStatus(g git.Git, gitErr error) []statusRow {
	if errors.Is(gitErr, git.ErrNotInstalled) {
		return []statusRow{{check: "Git repository", ok: boolPtr(false), detail: "git is not installed"}}
	}
	if g == nil {
		return []statusRow{{check: "Git repository", ok: boolPtr(false), detail: "not in a git repository"}}
	}

	rows := []statusRow{{check: "Git repository", ok: boolPtr(true), detail: "yes"}}

	branch, err := g.GetCurrentBranch()
	if err != nil {
		return append(rows, statusRow{check: "Branch", ok: boolPtr(false), detail: oneLine(err.Error())})
	}
	rows = append(rows, statusRow{check: "Branch", detail: branch})

	if key, ok := naming.ExtractTicketKey(branch); ok {
		rows = append(rows, statusRow{check: "Ticket", ok: boolPtr(true), detail: key})
	} else {
		rows = append(rows, statusRow{check: "Ticket", ok: boolPtr(false), detail: "no ticket key in branch name"})
	}
	return rows
}

func renderStatus(cmd *cobra.Command, rows []statusRow) error {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	data := make([][]string, len(rows))
	for i, r := range rows {
		marker := ""
		if r.ok != nil {
			marker = okStyle.Render("\u2713") // checkmark
			if !*r.ok {
				marker = failStyle.Render("\u2717") // ballot x
			}
		}
		data[i] = []string{r.check, marker, r.detail}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle.Foreground(gray)
			default:
				return cellStyle
			}
		}).
		Headers("Check", "", "Detail").
		Rows(data...)

	if isTerminal(cmd.OutOrStdout()) {
		t = t.Width(min(terminalWidth(cmd.OutOrStdout()), defaultWrapWidth))
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}

func boolPtr(b bool) *bool { return &b }
