package git

import "errors"

// ErrCommandFailed is wrapped by every error coming from a failed or timed out git invocation.
var ErrCommandFailed = errors.New("git command failed")

// ErrNotInstalled means the git executable could not be found in PATH.
var ErrNotInstalled = errors.New("git is not installed")

// DetachedHead is what GetCurrentBranch returns when HEAD is not on a branch.
const DetachedHead = "HEAD"

type Git interface {
	// GetWorktreeRoot returns the absolute path to the root of the current worktree.
	// Returns ("", nil) when the working directory is not inside a git repository.
	GetWorktreeRoot() (string, error)

	// GetMainWorktreePath returns the absolute path of the main worktree,
	// even when called from a linked worktree.
	GetMainWorktreePath() (string, error)

	// GetCurrentBranch returns the short name of the checked out branch,
	// or DetachedHead when HEAD is detached.
	GetCurrentBranch() (string, error)

	// GetCommitMessage returns the full message (subject and body) of the HEAD commit.
	GetCommitMessage() (string, error)

	// GetDefaultRemote returns the default remote name.
	// Returns the value of git config remote.pushDefault if set, otherwise returns the fallback parameter.
	GetDefaultRemote(fallback string) (string, error)

	// GetRepoDefaultBranch returns the default branch name by querying the remote's HEAD reference.
	// Returns ("", nil) if the remote exists but the remote HEAD is not set.
	// Returns an error if the remote does not exist or git fails.
	GetRepoDefaultBranch(remoteName string) (string, error)

	// Push publishes the branch to the remote and sets it as upstream.
	// Will mutate the remote. A no-op in dry-run mode.
	Push(remoteName, branchName string) error
}
