package github

import "errors"

var (
	// ErrNotInstalled means the gh executable is not on PATH.
	ErrNotInstalled = errors.New("GitHub CLI (gh) is not installed")

	// ErrNotAuthenticated means gh is installed but `gh auth status` fails.
	ErrNotAuthenticated = errors.New("GitHub CLI is not authenticated, run 'gh auth login'")

	// ErrCommandFailed is wrapped by every error coming from a failed or timed out gh invocation.
	ErrCommandFailed = errors.New("gh command failed")
)

type GitHub interface {

	// Validate checks that gh is installed and authenticated.
	// Returns ErrNotInstalled or ErrNotAuthenticated otherwise.
	Validate() error

	// GetAuthStatus returns the output of `gh auth status`.
	GetAuthStatus() (string, error)

	// GetPullRequestByBranch returns the open pull request whose head is branchName,
	// or nil when there is none.
	GetPullRequestByBranch(branchName string) (*PullRequest, error)

	// CreatePullRequest opens a pull request and returns it as GitHub reports it.
	CreatePullRequest(opts CreateOptions) (PullRequest, error)
}

// CreateOptions are the arguments of `gh pr create`.
type CreateOptions struct {
	Base  string // empty = repository default branch
	Body  string
	Head  string
	Title string
}
