package pr

import (
	"strings"
	"testing"

	"github.com/jmcampanini/jh/internal/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jiraURL = "https://example.atlassian.net"

func ref(key, summary string) jira.IssueRef {
	return jira.IssueRef{Key: key, Summary: summary, URL: jiraURL + "/browse/" + key}
}

func simpleTicket() *jira.Ticket {
	r := ref("PROJ-123", "Add feature flag")
	return &jira.Ticket{Key: r.Key, Summary: r.Summary, URL: r.URL}
}

func richTicket() *jira.Ticket {
	t := simpleTicket()
	epic := ref("PROJ-1", "Feature flags")
	t.Epic = &epic
	t.Links = []jira.Link{
		{IssueRef: ref("PROJ-99", "Flag service"), Relation: "is blocked by"},
		{IssueRef: ref("OPS-7", "Roll out flags"), Relation: "blocks"},
	}
	return t
}

func TestCompose_TicketWithoutEpicOrLinks(t *testing.T) {
	draft := Compose(simpleTicket(), "Wire the flag into settings\n\nAlso adds a test.", Options{Push: true})

	assert.Equal(t, "PROJ-123: Add feature flag", draft.Title)
	assert.Contains(t, draft.Body, "Wire the flag into settings\n\nAlso adds a test.")
	assert.Contains(t, draft.Body, "[PROJ-123](https://example.atlassian.net/browse/PROJ-123)")
	assert.NotContains(t, draft.Body, "**Epic:**")
	assert.NotContains(t, draft.Body, "## Related Issues")
	assert.True(t, draft.Push)
	assert.False(t, draft.DryRun)
	assert.NoError(t, draft.Validate())
}

func TestCompose_FullBody(t *testing.T) {
	draft := Compose(richTicket(), "Wire the flag\n", Options{})

	want := `## Description

Wire the flag

## Jira References

- **Ticket:** [PROJ-123](https://example.atlassian.net/browse/PROJ-123) - Add feature flag
- **Epic:** [PROJ-1](https://example.atlassian.net/browse/PROJ-1) - Feature flags

## Related Issues

- [PROJ-99](https://example.atlassian.net/browse/PROJ-99) - Flag service (is blocked by)
- [OPS-7](https://example.atlassian.net/browse/OPS-7) - Roll out flags (blocks)
`
	assert.Equal(t, want, draft.Body)
}

func TestCompose_NoTicket(t *testing.T) {
	draft := Compose(nil, "Fix login redirect loop\n\nThe cookie was never cleared.", Options{Push: true})

	assert.Equal(t, "Fix login redirect loop", draft.Title)
	assert.Equal(t, "## Description\n\nFix login redirect loop\n\nThe cookie was never cleared.\n", draft.Body)
	assert.NotContains(t, draft.Body, "atlassian")
	assert.NotContains(t, draft.Body, "Jira References")
}

func TestCompose_NoTicketSkipsBlankLeadingLines(t *testing.T) {
	draft := Compose(nil, "\n\n  Subject line  \nbody", Options{})
	assert.Equal(t, "Subject line", draft.Title)
}

func TestCompose_TitleOverride(t *testing.T) {
	tests := []struct {
		name   string
		ticket *jira.Ticket
		msg    string
	}{
		{name: "with ticket", ticket: richTicket(), msg: "commit"},
		{name: "without ticket", ticket: nil, msg: "commit"},
		{name: "without commit message", ticket: nil, msg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := Compose(tt.ticket, tt.msg, Options{Title: "My own title", TitleMaxLength: 20})
			assert.Equal(t, "My own title", draft.Title)
		})
	}
}

func TestCompose_TitleOverrideIsNotTruncated(t *testing.T) {
	long := strings.Repeat("x", 100)
	draft := Compose(simpleTicket(), "commit", Options{Title: long, TitleMaxLength: 72})
	assert.Equal(t, long, draft.Title)
}

func TestCompose_BodyOverride(t *testing.T) {
	draft := Compose(simpleTicket(), "commit message", Options{Body: "Hand written description"})

	assert.Contains(t, draft.Body, "Hand written description")
	assert.NotContains(t, draft.Body, "commit message")
	// Tracker references are kept
	assert.Contains(t, draft.Body, "[PROJ-123]")
}

func TestCompose_AdditionalTickets(t *testing.T) {
	extra := []jira.Ticket{
		{Key: "PROJ-153", Summary: "Second ticket", URL: jiraURL + "/browse/PROJ-153"},
		{Key: "CORE-42", Summary: "Third ticket", URL: jiraURL + "/browse/CORE-42"},
	}
	draft := Compose(simpleTicket(), "commit", Options{Additional: extra})

	assert.Equal(t, "PROJ-123, PROJ-153, CORE-42: Add feature flag", draft.Title)

	main := strings.Index(draft.Body, "[PROJ-123]")
	second := strings.Index(draft.Body, "[PROJ-153]")
	third := strings.Index(draft.Body, "[CORE-42]")
	require.True(t, main >= 0 && second >= 0 && third >= 0)
	assert.Less(t, main, second)
	assert.Less(t, second, third)
	assert.Contains(t, draft.Body, "- **Ticket:** [CORE-42](https://example.atlassian.net/browse/CORE-42) - Third ticket")
}

func TestCompose_TitleTruncation(t *testing.T) {
	ticket := simpleTicket()
	ticket.Summary = strings.Repeat("word ", 30)

	draft := Compose(ticket, "commit", Options{TitleMaxLength: 40})
	assert.LessOrEqual(t, len([]rune(draft.Title)), 40)
	assert.True(t, strings.HasPrefix(draft.Title, "PROJ-123: "))
	assert.True(t, strings.HasSuffix(draft.Title, "..."))

	noLimit := Compose(ticket, "commit", Options{TitleMaxLength: 0})
	assert.Equal(t, "PROJ-123: "+ticket.Summary, noLimit.Title)
}

func TestCompose_TitleTruncationWithManyKeys(t *testing.T) {
	tests := []struct {
		name       string
		additional []string
		summary    string
		want       string
	}{
		{
			name:       "keys longer than the limit drop the summary",
			additional: []string{"PROJ-456", "CORE-789"},
			summary:    "A fairly long summary that should be cut",
			want:       "PROJ-123, PROJ-456, CORE-789",
		},
		{
			name:       "room for a cut summary",
			additional: []string{"X-1"},
			summary:    "A fairly long summary that should be cut",
			want:       "PROJ-123, X-1: A...",
		},
		{
			name:       "no room for an ellipsis drops the summary",
			additional: []string{"CORE-7"},
			summary:    "Fix",
			want:       "PROJ-123, CORE-7",
		},
		{
			name:       "short summary that fits exactly is kept",
			additional: []string{"CORE-7"},
			summary:    "Go",
			want:       "PROJ-123, CORE-7: Go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := simpleTicket()
			ticket.Summary = tt.summary
			var additional []jira.Ticket
			for _, key := range tt.additional {
				additional = append(additional, jira.Ticket{Key: key})
			}

			draft := Compose(ticket, "commit", Options{Additional: additional, TitleMaxLength: 20})

			assert.Equal(t, tt.want, draft.Title)
		})
	}
}

func TestCompose_SubjectTruncation(t *testing.T) {
	draft := Compose(nil, strings.Repeat("a", 100), Options{TitleMaxLength: 30})
	assert.Equal(t, strings.Repeat("a", 27)+"...", draft.Title)
}

func TestCompose_Deterministic(t *testing.T) {
	opts := Options{
		Additional:     []jira.Ticket{{Key: "X-1", Summary: "x", URL: jiraURL + "/browse/X-1"}},
		Base:           "develop",
		DryRun:         true,
		Push:           false,
		TitleMaxLength: 50,
	}

	first := Compose(richTicket(), "msg\n\nbody", opts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compose(richTicket(), "msg\n\nbody", opts))
	}
}

func TestCompose_CarriesFlags(t *testing.T) {
	draft := Compose(nil, "msg", Options{Base: "release/1.2", DryRun: true, Push: false})
	assert.Equal(t, "release/1.2", draft.Base)
	assert.True(t, draft.DryRun)
	assert.False(t, draft.Push)
}

func TestDraft_Validate(t *testing.T) {
	assert.NoError(t, Draft{Title: "ok"}.Validate())

	err := Compose(nil, "", Options{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is empty")

	assert.Error(t, Draft{Title: "   "}.Validate())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "no limit", input: "hello world", maxLen: 0, want: "hello world"},
		{name: "fits", input: "hello", maxLen: 5, want: "hello"},
		{name: "cut", input: "hello world", maxLen: 8, want: "hello..."},
		{name: "trailing space trimmed before ellipsis", input: "hello world", maxLen: 9, want: "hello..."},
		{name: "tiny limit", input: "hello", maxLen: 2, want: "he"},
		{name: "multibyte", input: "héllo wörld", maxLen: 8, want: "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.maxLen))
		})
	}
}
