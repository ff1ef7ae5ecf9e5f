package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// GitHubCli provides GitHub operations by executing the gh CLI.
type GitHubCli struct {
	log        *clog.Logger
	timeout    time.Duration
	workingDir string
}

var _ GitHub = &GitHubCli{}

// New creates a new GitHubCli instance that executes gh commands
// in the specified working directory.
func New(workingDir string, timeout time.Duration) GitHub {
	return &GitHubCli{
		log:        clog.Default().WithPrefix("github"),
		timeout:    timeout,
		workingDir: workingDir,
	}
}

// ghError keeps the raw stderr next to the wrapped sentinel so callers can
// report gh's own words without the noise of the full command line.
type ghError struct {
	args   []string
	stderr string
	err    error
}

func (e *ghError) Error() string {
	msg := strings.Join(strings.Fields(e.stderr), " ")
	if msg == "" {
		msg = e.err.Error()
	}
	return fmt.Sprintf("gh %s: %s", strings.Join(e.args[:min(2, len(e.args))], " "), msg)
}

func (e *ghError) Unwrap() []error { return []error{ErrCommandFailed, e.err} }

func (g *GitHubCli) executeGhCommand(args ...string) (string, error) {
	g.log.Debug("Executing gh command", "cmd", "gh", "args", redactBody(args), "workingDir", g.workingDir)

	ctx, cancel := g.commandContext()
	defer cancel()

	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Dir = g.workingDir
	cmd.Env = append(os.Environ(), "GH_PROMPT_DISABLED=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			g.log.Debug("gh command timed out", "args", redactBody(args), "timeout", g.timeout)
			return "", fmt.Errorf("%w: gh %s timed out after %s", ErrCommandFailed, args[0], g.timeout)
		}
		g.log.Debug("gh command failed", "args", redactBody(args), "stderr", stderr.String(), "error", err)
		return "", &ghError{args: args, stderr: stderr.String(), err: err}
	}

	output := strings.TrimSpace(stdout.String())
	g.log.Debug("gh command succeeded", "args", redactBody(args), "outputLen", len(output), "elapsed", time.Since(start))
	return output, nil
}

// redactBody drops the pull request body from logged arguments.
func redactBody(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--body" {
			out[i+1] = fmt.Sprintf("<%d bytes>", len(out[i+1]))
		}
	}
	return out
}

func (g *GitHubCli) Validate() error {
	if _, err := exec.LookPath("gh"); err != nil {
		g.log.Debug("gh not found on PATH", "error", err)
		return ErrNotInstalled
	}
	if _, err := g.GetAuthStatus(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return nil
}

func (g *GitHubCli) GetAuthStatus() (string, error) {
	output, err := g.executeGhCommand("auth", "status")
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", ErrNotInstalled
		}
		return "", err
	}
	return output, nil
}

func (g *GitHubCli) GetPullRequestByBranch(branchName string) (*PullRequest, error) {
	args := []string{
		"pr", "list",
		"--head", branchName,
		"--state", "open",
		"--json", prJsonFields,
		"--limit", "1",
	}

	output, err := g.executeGhCommand(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request for branch %s: %w", branchName, err)
	}

	var prs []PullRequest
	if err := json.Unmarshal([]byte(output), &prs); err != nil {
		return nil, fmt.Errorf("failed to parse pull requests for branch %s: %w", branchName, err)
	}

	if len(prs) == 0 {
		return nil, nil
	}

	return &prs[0], nil
}

func (g *GitHubCli) CreatePullRequest(opts CreateOptions) (PullRequest, error) {
	args := []string{
		"pr", "create",
		"--head", opts.Head,
		"--title", opts.Title,
		"--body", opts.Body,
	}
	if opts.Base != "" {
		args = append(args, "--base", opts.Base)
	}

	if _, err := g.executeGhCommand(args...); err != nil {
		return PullRequest{}, fmt.Errorf("failed to create pull request: %w", err)
	}

	output, err := g.executeGhCommand("pr", "view", opts.Head, "--json", prJsonFields)
	if err != nil {
		return PullRequest{}, fmt.Errorf("pull request created but could not be read back: %w", err)
	}

	var pr PullRequest
	if err := json.Unmarshal([]byte(output), &pr); err != nil {
		return PullRequest{}, fmt.Errorf("failed to parse created pull request: %w", err)
	}

	g.log.Debug("Created pull request", "number", pr.Number, "url", pr.URL)
	return pr, nil
}

// commandContext bounds a command by the configured timeout. Zero disables it.
func (g *GitHubCli) commandContext() (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), g.timeout)
}
