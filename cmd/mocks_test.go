package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/99designs/keyring"
	"github.com/jmcampanini/jh/internal/config"
	"github.com/jmcampanini/jh/internal/credentials"
	"github.com/jmcampanini/jh/internal/github"
	"github.com/jmcampanini/jh/internal/jira"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// mockGitHub implements github.GitHub for testing
type mockGitHub struct {
	createPullRequestFn      func(opts github.CreateOptions) (github.PullRequest, error)
	getAuthStatusFn          func() (string, error)
	getPullRequestByBranchFn func(branchName string) (*github.PullRequest, error)
	validateFn               func() error

	createCalls   []github.CreateOptions
	validateCalls int
}

func (m *mockGitHub) CreatePullRequest(opts github.CreateOptions) (github.PullRequest, error) {
	m.createCalls = append(m.createCalls, opts)
	if m.createPullRequestFn != nil {
		return m.createPullRequestFn(opts)
	}
	return github.PullRequest{
		Number: 42,
		URL:    "https://github.com/owner/repo/pull/42",
		State:  github.PRStateOpen,
		Title:  opts.Title,
	}, nil
}

func (m *mockGitHub) GetAuthStatus() (string, error) {
	if m.getAuthStatusFn != nil {
		return m.getAuthStatusFn()
	}
	return "Logged in", nil
}

func (m *mockGitHub) GetPullRequestByBranch(branchName string) (*github.PullRequest, error) {
	if m.getPullRequestByBranchFn != nil {
		return m.getPullRequestByBranchFn(branchName)
	}
	return nil, nil
}

func (m *mockGitHub) Validate() error {
	m.validateCalls++
	if m.validateFn != nil {
		return m.validateFn()
	}
	return nil
}

// mockGit implements git.Git for testing
type mockGit struct {
	getCommitMessageFn     func() (string, error)
	getCurrentBranchFn     func() (string, error)
	getDefaultRemoteFn     func(fallback string) (string, error)
	getMainWorktreePathFn  func() (string, error)
	getRepoDefaultBranchFn func(remoteName string) (string, error)
	getWorktreeRootFn      func() (string, error)
	pushFn                 func(remoteName, branchName string) error

	pushCalls [][2]string
}

func (m *mockGit) GetCommitMessage() (string, error) {
	if m.getCommitMessageFn != nil {
		return m.getCommitMessageFn()
	}
	return "", nil
}

func (m *mockGit) GetCurrentBranch() (string, error) {
	if m.getCurrentBranchFn != nil {
		return m.getCurrentBranchFn()
	}
	return "main", nil
}

func (m *mockGit) GetDefaultRemote(fallback string) (string, error) {
	if m.getDefaultRemoteFn != nil {
		return m.getDefaultRemoteFn(fallback)
	}
	return fallback, nil
}

func (m *mockGit) GetMainWorktreePath() (string, error) {
	if m.getMainWorktreePathFn != nil {
		return m.getMainWorktreePathFn()
	}
	return "/workspace/repo", nil
}

func (m *mockGit) GetRepoDefaultBranch(remoteName string) (string, error) {
	if m.getRepoDefaultBranchFn != nil {
		return m.getRepoDefaultBranchFn(remoteName)
	}
	return "main", nil
}

func (m *mockGit) GetWorktreeRoot() (string, error) {
	if m.getWorktreeRootFn != nil {
		return m.getWorktreeRootFn()
	}
	return "/workspace/repo", nil
}

func (m *mockGit) Push(remoteName, branchName string) error {
	m.pushCalls = append(m.pushCalls, [2]string{remoteName, branchName})
	if m.pushFn != nil {
		return m.pushFn(remoteName, branchName)
	}
	return nil
}

// mockTracker implements jira.Tracker for testing
type mockTracker struct {
	tickets  map[string]jira.Ticket
	fetchErr error
	myselfFn func() (jira.User, error)

	fetched []string
}

func (m *mockTracker) FetchTicket(_ context.Context, key string) (jira.Ticket, error) {
	m.fetched = append(m.fetched, key)
	if m.fetchErr != nil {
		return jira.Ticket{}, m.fetchErr
	}
	t, ok := m.tickets[key]
	if !ok {
		return jira.Ticket{}, fmt.Errorf("failed to fetch issue %s: %w", key, &jira.APIError{StatusCode: 404, Message: "Issue does not exist or you do not have permission to see it."})
	}
	return t, nil
}

func (m *mockTracker) Myself(context.Context) (jira.User, error) {
	if m.myselfFn != nil {
		return m.myselfFn()
	}
	return jira.User{AccountID: "abc", DisplayName: "Dev Person", EmailAddress: "dev@example.com"}, nil
}

const testServer = "https://example.atlassian.net"

func testCreds() credentials.Credentials {
	return credentials.Credentials{
		ServerURL: testServer,
		Email:     "dev@example.com",
		APIToken:  "secret-token",
	}
}

func testTicket(key, summary string) jira.Ticket {
	return jira.Ticket{Key: key, Summary: summary, URL: testServer + "/browse/" + key}
}

// newMemoryStore returns a credential store backed by an in-memory keyring.
func newMemoryStore(t *testing.T, creds *credentials.Credentials) *credentials.KeyringStore {
	t.Helper()
	store := credentials.NewStore(keyring.NewArrayKeyring(nil))
	if creds != nil {
		require.NoError(t, store.Save(*creds))
	}
	return store
}

// storeRecorder wraps a store and counts how often it was opened.
type storeRecorder struct {
	store credentials.Store
	err   error
	opens int
}

func (r *storeRecorder) open() (credentials.Store, error) {
	r.opens++
	if r.err != nil {
		return nil, r.err
	}
	return r.store, nil
}

// trackerRecorder hands out one tracker and remembers the credentials it was built with.
type trackerRecorder struct {
	tracker *mockTracker
	creds   []credentials.Credentials
}

func (r *trackerRecorder) build(creds credentials.Credentials) jira.Tracker {
	r.creds = append(r.creds, creds)
	return r.tracker
}

func defaultTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

// newTestCommand returns a bare command whose output is captured.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

var errBoom = errors.New("boom")
