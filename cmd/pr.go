package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jmcampanini/jh/internal/config"
	"github.com/jmcampanini/jh/internal/git"
	"github.com/jmcampanini/jh/internal/github"
	"github.com/jmcampanini/jh/internal/jira"
	"github.com/jmcampanini/jh/internal/naming"
	"github.com/jmcampanini/jh/internal/pr"
	"github.com/spf13/cobra"
)

// prOptions are the flags of `jh pr`.
type prOptions struct {
	additional    []string
	base          string
	body          string
	dryRun        bool
	noPush        bool
	requireTicket bool
	title         string
}

var prFlags prOptions

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Create a pull request for the current branch",
	Long: `Create a GitHub pull request for the current branch, described from its Jira ticket.

The ticket key is read from the branch name (PROJ-123-add-feature,
feature/PROJ-123-add-feature). The title becomes "PROJ-123: <ticket summary>"
and the body holds the last commit message plus links to the ticket, its epic
and its linked issues.

Branches without a ticket key still get a pull request, titled from the last
commit, unless --require-ticket (or pr.require_ticket) is set.

Use --dry-run to preview the pull request without pushing or creating anything.`,
	Example: `  jh pr --dry-run
  jh pr --base develop
  jh pr -a PROJ-153 -a CORE-42
  jh pr --title "PROJ-123: Custom title" --no-push`,
	Args: cobra.NoArgs,
	RunE: runPR,
}

func init() {
	prCmd.Flags().StringArrayVarP(&prFlags.additional, "additional", "a", nil, "Additional ticket key to reference (repeatable)")
	prCmd.Flags().StringVar(&prFlags.base, "base", "", "Base branch (defaults to the repository default branch)")
	prCmd.Flags().StringVarP(&prFlags.body, "body", "b", "", "Description to use instead of the last commit message")
	prCmd.Flags().BoolVar(&prFlags.dryRun, "dry-run", false, "Print the pull request without pushing or creating it")
	prCmd.Flags().BoolVar(&prFlags.noPush, "no-push", false, "Do not push the branch before creating the pull request")
	prCmd.Flags().BoolVar(&prFlags.requireTicket, "require-ticket", false, "Fail when the branch name has no ticket key")
	prCmd.Flags().StringVarP(&prFlags.title, "title", "t", "", "Title to use instead of the derived one")
	rootCmd.AddCommand(prCmd)
}

func runPR(cmd *cobra.Command, _ []string) error {
	return runPRWithDeps(cmd, prFlags, nil, nil)
}

// prDeps holds injectable dependencies for testing.
type prDeps struct {
	gh         github.GitHub
	git        git.Git
	openStore  storeOpener
	newTracker trackerFactory
}

// prContext holds the resolved dependencies for the pr command.
type prContext struct {
	cfg        config.Config
	ghClient   github.GitHub
	gitClient  git.Git
	openStore  storeOpener
	newTracker trackerFactory
}

func runPRWithDeps(cmd *cobra.Command, opts prOptions, deps *prDeps, cfg *config.Config) error {
	for _, key := range opts.additional {
		if !naming.IsTicketKey(key) {
			return fmt.Errorf("invalid ticket key %q: expected a key like PROJ-123", key)
		}
	}

	ctx, err := initPRContext(deps, cfg, opts.dryRun)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()

	// Step 1: Resolve the branch and its ticket key
	branch, err := ctx.gitClient.GetCurrentBranch()
	if err != nil {
		return err
	}
	if branch == git.DetachedHead {
		return errors.New("HEAD is detached, check out a branch first")
	}

	key, hasKey := naming.ExtractTicketKey(branch)
	if !hasKey {
		if opts.requireTicket || ctx.cfg.PR.RequireTicket || len(opts.additional) > 0 {
			return fmt.Errorf("%w %q: expected a key like PROJ-123", naming.ErrNoTicketKey, branch)
		}
		_, _ = fmt.Fprintf(stderr, "%s\n", warnStyle.Render(fmt.Sprintf("No Jira ticket key in branch %q, creating the pull request without Jira references", branch)))
	}

	_, _ = fmt.Fprintf(stderr, "%s %s\n", labelStyle.Render("Branch:"), branch)
	if hasKey {
		_, _ = fmt.Fprintf(stderr, "%s %s\n", labelStyle.Render("Ticket:"), key)
	}

	// Step 2: Check GitHub before doing any work (skipped in dry-run)
	if !opts.dryRun {
		if err := ctx.ghClient.Validate(); err != nil {
			return err
		}

		existing, err := ctx.ghClient.GetPullRequestByBranch(branch)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%s\n", warnStyle.Render("Could not check for an existing pull request: "+oneLine(err.Error())))
		} else if existing != nil {
			printExistingPR(stderr, existing)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), existing.URL)
			return err
		}
	}

	// Step 3: Fetch the tickets
	var ticket *jira.Ticket
	var additional []jira.Ticket
	if hasKey {
		ticket, additional, err = fetchTickets(cmd, ctx, key, opts.additional)
		if err != nil {
			return err
		}
	}

	// Step 4: Compose the draft
	commitMessage, err := ctx.gitClient.GetCommitMessage()
	if err != nil {
		clog.Debug("No commit message available", "error", err)
		commitMessage = ""
	}

	draft := pr.Compose(ticket, commitMessage, pr.Options{
		Additional:     additional,
		Base:           opts.base,
		Body:           opts.body,
		DryRun:         opts.dryRun,
		Push:           !opts.noPush,
		Title:          opts.title,
		TitleMaxLength: ctx.cfg.PR.TitleMaxLength,
	})
	if err := draft.Validate(); err != nil {
		return err
	}

	if draft.DryRun {
		return printDraft(cmd, ctx, draft)
	}

	// Step 5: Push and create
	if draft.Push {
		remote, err := ctx.gitClient.GetDefaultRemote(ctx.cfg.Git.Remote)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stderr, "Pushing %s to %s...\n", branch, remote)
		if err := ctx.gitClient.Push(remote, branch); err != nil {
			// gh reports the real problem if the branch is missing on the remote
			_, _ = fmt.Fprintf(stderr, "%s\n", warnStyle.Render("Warning: "+oneLine(err.Error())))
		}
	}

	_, _ = fmt.Fprintln(stderr, "Creating pull request...")
	created, err := ctx.ghClient.CreatePullRequest(github.CreateOptions{
		Base:  draft.Base,
		Body:  draft.Body,
		Head:  branch,
		Title: draft.Title,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stderr, "%s\n", okStyle.Render(fmt.Sprintf("Created pull request #%d", created.Number)))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), created.URL)
	return err
}

// fetchTickets loads the main ticket and every additional one.
func fetchTickets(cmd *cobra.Command, ctx *prContext, key string, additionalKeys []string) (*jira.Ticket, []jira.Ticket, error) {
	store, err := ctx.openStore()
	if err != nil {
		return nil, nil, err
	}
	creds, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	tracker := ctx.newTracker(creds)
	reqCtx := commandContext(cmd)
	stderr := cmd.ErrOrStderr()

	_, _ = fmt.Fprintln(stderr, dimStyle.Render("Fetching Jira ticket details..."))

	ticket, err := tracker.FetchTicket(reqCtx, key)
	if err != nil {
		return nil, nil, err
	}
	printTicket(stderr, ticket)

	var additional []jira.Ticket
	for _, k := range additionalKeys {
		t, err := tracker.FetchTicket(reqCtx, k)
		if err != nil {
			return nil, nil, err
		}
		_, _ = fmt.Fprintf(stderr, "  %s %s - %s\n", labelStyle.Render("Additional:"), t.Key, t.Summary)
		additional = append(additional, t)
	}

	return &ticket, additional, nil
}

func printTicket(w io.Writer, ticket jira.Ticket) {
	line := fmt.Sprintf("  %s %s", labelStyle.Render("Summary:"), ticket.Summary)
	if !ticket.Updated.IsZero() {
		line += " " + dimStyle.Render("(updated "+humanize.Time(ticket.Updated)+")")
	}
	_, _ = fmt.Fprintln(w, line)

	if ticket.Epic != nil {
		_, _ = fmt.Fprintf(w, "  %s %s - %s\n", labelStyle.Render("Epic:"), ticket.Epic.Key, ticket.Epic.Summary)
	}
	if len(ticket.Links) > 0 {
		_, _ = fmt.Fprintf(w, "  %s %d\n", labelStyle.Render("Linked issues:"), len(ticket.Links))
	}
}

func printExistingPR(w io.Writer, existing *github.PullRequest) {
	kind := "A pull request"
	if existing.State == github.PRStateDraft {
		kind = "A draft pull request"
	}
	_, _ = fmt.Fprintf(w, "%s\n", warnStyle.Render(fmt.Sprintf("%s already exists for this branch (#%d):", kind, existing.Number)))
	_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Title:"), existing.Title)

	var opened []string
	if existing.AuthorLogin != "" {
		opened = append(opened, "by "+existing.AuthorLogin)
	}
	if !existing.CreatedAt.IsZero() {
		opened = append(opened, humanize.Time(existing.CreatedAt))
	}
	if len(opened) > 0 {
		_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Opened:"), strings.Join(opened, ", "))
	}
}

// printDraft writes the dry-run preview to stdout.
func printDraft(cmd *cobra.Command, ctx *prContext, draft pr.Draft) error {
	out := cmd.OutOrStdout()

	base := draft.Base
	if base == "" {
		base = "(repository default)"
		if remote, err := ctx.gitClient.GetDefaultRemote(ctx.cfg.Git.Remote); err == nil {
			if b, err := ctx.gitClient.GetRepoDefaultBranch(remote); err == nil && b != "" {
				base = b
			}
		}
	}

	push := "yes"
	if !draft.Push {
		push = "no"
	}

	var sb strings.Builder
	sb.WriteString(headingStyle.Render("Pull request preview (dry run)") + "\n\n")
	sb.WriteString(labelStyle.Render("Title:") + " " + draft.Title + "\n")
	sb.WriteString(labelStyle.Render("Base:") + "  " + base + "\n")
	sb.WriteString(labelStyle.Render("Push:") + "  " + push + "\n\n")
	sb.WriteString(renderMarkdown(out, draft.Body))

	if _, err := fmt.Fprintln(out, strings.TrimRight(sb.String(), "\n")); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Dry run: nothing was pushed or created."))
	return nil
}

// initPRContext initializes the context from deps (for testing) or from environment.
func initPRContext(deps *prDeps, cfg *config.Config, dryRun bool) (*prContext, error) {
	if deps != nil {
		loadedCfg := config.DefaultConfig()
		if cfg != nil {
			loadedCfg = *cfg
		}
		return &prContext{
			cfg:        loadedCfg,
			ghClient:   deps.gh,
			gitClient:  deps.git,
			openStore:  deps.openStore,
			newTracker: deps.newTracker,
		}, nil
	}

	env, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if env.gitErr != nil {
		return nil, env.gitErr
	}
	if !env.inRepo {
		return nil, errors.New("jh pr must be run inside a git repository")
	}

	return &prContext{
		cfg:        env.cfg,
		ghClient:   github.New(env.cwd, env.cfg.GitHub.Timeout),
		gitClient:  git.New(dryRun, env.cwd, env.cfg.Git.Timeout),
		openStore:  keyringStoreOpener(env.cfg),
		newTracker: jiraTrackerFactory(env.cfg),
	}, nil
}
