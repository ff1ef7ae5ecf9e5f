package jira

import (
	"encoding/json"
	"time"
)

// Ticket is the read-only view of a Jira issue used to compose a pull request.
type Ticket struct {
	Key       string
	Summary   string
	URL       string // browse URL, e.g. https://x.atlassian.net/browse/PROJ-1
	IssueType string
	Updated   time.Time // zero if Jira did not report it
	Epic      *IssueRef // nil if the ticket has no epic
	Links     []Link    // in the order Jira returns them
}

// Ref returns the ticket as an IssueRef.
func (t Ticket) Ref() IssueRef {
	return IssueRef{Key: t.Key, Summary: t.Summary, URL: t.URL}
}

// IssueRef identifies a related issue.
type IssueRef struct {
	Key     string
	Summary string
	URL     string
}

// Link is an issue linked to a ticket.
type Link struct {
	IssueRef
	// Relation is the link description from the ticket's point of view,
	// e.g. "blocks" or "is blocked by".
	Relation string
}

// User is the account behind the credentials.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Wire types for GET /rest/api/3/issue/{key}.

type issueResponse struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	IssueLinks []issueLink `json:"issuelinks"`
	IssueType  issueType   `json:"issuetype"`
	Parent     *parentRef  `json:"parent"`
	Summary    string      `json:"summary"`
	Updated    string      `json:"updated"`

	// all holds every field by name, for instance-specific custom fields.
	all map[string]json.RawMessage
}

func (f *issueFields) UnmarshalJSON(data []byte) error {
	type plain issueFields
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &p.all); err != nil {
		return err
	}
	*f = issueFields(p)
	return nil
}

// stringField returns a custom field holding a plain string, e.g. an epic link key.
func (f issueFields) stringField(name string) string {
	raw, ok := f.all[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

type issueType struct {
	Name string `json:"name"`
}

type parentRef struct {
	Key    string `json:"key"`
	Fields struct {
		Summary   string    `json:"summary"`
		IssueType issueType `json:"issuetype"`
	} `json:"fields"`
}

type issueLink struct {
	Type struct {
		Name    string `json:"name"`
		Inward  string `json:"inward"`
		Outward string `json:"outward"`
	} `json:"type"`
	InwardIssue  *linkedIssue `json:"inwardIssue"`
	OutwardIssue *linkedIssue `json:"outwardIssue"`
}

type linkedIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
	} `json:"fields"`
}

// updatedLayout is the timestamp format of Jira's "updated" field.
const updatedLayout = "2006-01-02T15:04:05.000-0700"

func parseUpdated(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(updatedLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
