package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	clog "github.com/charmbracelet/log"
	"github.com/jmcampanini/jh/internal/credentials"
)

// Tracker is the read-only subset of Jira that jh needs.
type Tracker interface {
	// FetchTicket returns the ticket's summary, epic and linked issues.
	FetchTicket(ctx context.Context, key string) (Ticket, error)

	// Myself returns the user behind the credentials. Used to verify them.
	Myself(ctx context.Context) (User, error)
}

// maxErrorBody caps how much of an error response is read into messages.
const maxErrorBody = 4096

// Client is a Jira REST API v3 client. It only issues GET requests.
type Client struct {
	baseURL       string
	email         string
	epicLinkField string
	httpClient    *http.Client
	log           *clog.Logger
	token         string
}

var _ Tracker = &Client{}

// Options tunes a Client.
type Options struct {
	// EpicLinkField is the classic-project epic link custom field, e.g. "customfield_10014".
	EpicLinkField string
	Timeout       time.Duration
	// HTTPClient overrides the transport, mostly for tests. Timeout is ignored when set.
	HTTPClient *http.Client
}

// New creates a Client for the server and account in creds.
func New(creds credentials.Credentials, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:       credentials.NormalizeServerURL(creds.ServerURL),
		email:         creds.Email,
		epicLinkField: opts.EpicLinkField,
		httpClient:    httpClient,
		log:           clog.Default().WithPrefix("jira"),
		token:         creds.APIToken,
	}
}

// BrowseURL returns the web URL of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

func (c *Client) Myself(ctx context.Context) (User, error) {
	var user User
	if err := c.get(ctx, "/rest/api/3/myself", nil, &user); err != nil {
		return User{}, fmt.Errorf("failed to verify credentials: %w", err)
	}
	return user, nil
}

func (c *Client) FetchTicket(ctx context.Context, key string) (Ticket, error) {
	fields := []string{"summary", "issuetype", "parent", "updated"}
	if c.epicLinkField != "" {
		fields = append(fields, c.epicLinkField)
	}

	issue, err := c.getIssue(ctx, key, fields)
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to fetch issue %s: %w", key, err)
	}

	ticket := Ticket{
		Key:       issue.Key,
		Summary:   issue.Fields.Summary,
		URL:       c.BrowseURL(issue.Key),
		IssueType: issue.Fields.IssueType.Name,
		Updated:   parseUpdated(issue.Fields.Updated),
	}

	ticket.Epic, err = c.resolveEpic(ctx, issue)
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to fetch epic of %s: %w", key, err)
	}

	linksIssue, err := c.getIssue(ctx, key, []string{"issuelinks"})
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to fetch links of %s: %w", key, err)
	}
	ticket.Links = c.convertLinks(linksIssue.Fields.IssueLinks)

	c.log.Debug("Fetched ticket", "key", ticket.Key, "hasEpic", ticket.Epic != nil, "links", len(ticket.Links))
	return ticket, nil
}

// resolveEpic prefers an Epic parent (next-gen projects), then the epic link
// custom field (classic projects). An epic link pointing at a missing issue is ignored.
func (c *Client) resolveEpic(ctx context.Context, issue issueResponse) (*IssueRef, error) {
	if p := issue.Fields.Parent; p != nil && strings.EqualFold(p.Fields.IssueType.Name, "Epic") {
		return &IssueRef{Key: p.Key, Summary: p.Fields.Summary, URL: c.BrowseURL(p.Key)}, nil
	}

	if c.epicLinkField == "" {
		return nil, nil
	}
	epicKey := issue.Fields.stringField(c.epicLinkField)
	if epicKey == "" {
		return nil, nil
	}

	epic, err := c.getIssue(ctx, epicKey, []string{"summary"})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.log.Debug("Epic link points at a missing issue", "epic", epicKey)
			return nil, nil
		}
		return nil, err
	}
	return &IssueRef{Key: epic.Key, Summary: epic.Fields.Summary, URL: c.BrowseURL(epic.Key)}, nil
}

func (c *Client) convertLinks(raw []issueLink) []Link {
	var links []Link
	for _, l := range raw {
		var issue *linkedIssue
		var relation string
		switch {
		case l.OutwardIssue != nil:
			issue, relation = l.OutwardIssue, l.Type.Outward
		case l.InwardIssue != nil:
			issue, relation = l.InwardIssue, l.Type.Inward
		default:
			continue
		}
		if relation == "" {
			relation = l.Type.Name
		}
		links = append(links, Link{
			IssueRef: IssueRef{Key: issue.Key, Summary: issue.Fields.Summary, URL: c.BrowseURL(issue.Key)},
			Relation: relation,
		})
	}
	return links
}

func (c *Client) getIssue(ctx context.Context, key string, fields []string) (issueResponse, error) {
	query := url.Values{}
	query.Set("fields", strings.Join(fields, ","))

	var issue issueResponse
	if err := c.get(ctx, "/rest/api/3/issue/"+url.PathEscape(key), query, &issue); err != nil {
		return issueResponse{}, err
	}
	return issue, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("Jira request", "method", req.Method, "url", endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("Jira request failed", "url", endpoint, "error", err)
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.log.Debug("Jira response", "url", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = resp.Header.Get("Retry-After")
	}

	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil {
		var msgs []string
		msgs = append(msgs, parsed.ErrorMessages...)
		fields := make([]string, 0, len(parsed.Errors))
		for field := range parsed.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			msgs = append(msgs, field+": "+parsed.Errors[field])
		}
		apiErr.Message = strings.Join(msgs, "; ")
	}
	if apiErr.Message == "" {
		apiErr.Message = oneLine(string(body), maxMessageLen)
	}
	return apiErr
}

// maxMessageLen keeps non-JSON bodies (HTML error pages) from flooding the terminal.
const maxMessageLen = 200

// oneLine collapses whitespace and cuts s to maxLen runes.
func oneLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen]) + "..."
	}
	return s
}
