package pr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmcampanini/jh/internal/jira"
)

// Draft is a pull request ready to be previewed or handed to gh.
type Draft struct {
	Base   string // empty = repository default branch
	Body   string
	DryRun bool
	Push   bool
	Title  string
}

// Validate reports drafts gh would reject.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("pull request title is empty: pass --title or add a commit message")
	}
	return nil
}

// Options carries the user's overrides and flags into Compose.
type Options struct {
	Additional     []jira.Ticket // extra tickets referenced in the title and body
	Base           string
	Body           string // replaces the commit message as description
	DryRun         bool
	Push           bool
	Title          string // replaces the derived title
	TitleMaxLength int    // 0 = no truncation
}

// Compose builds the draft for a pull request.
// ticket may be nil when the branch carries no ticket key; the draft then has
// no tracker references and its title comes from the commit subject.
// Compose is pure: the same inputs always give the same draft.
func Compose(ticket *jira.Ticket, commitMessage string, opts Options) Draft {
	return Draft{
		Base:   opts.Base,
		Body:   composeBody(ticket, commitMessage, opts),
		DryRun: opts.DryRun,
		Push:   opts.Push,
		Title:  composeTitle(ticket, commitMessage, opts),
	}
}

func composeTitle(ticket *jira.Ticket, commitMessage string, opts Options) string {
	if opts.Title != "" {
		return opts.Title
	}

	if ticket == nil {
		return truncate(commitSubject(commitMessage), opts.TitleMaxLength)
	}

	keys := []string{ticket.Key}
	for _, t := range opts.Additional {
		keys = append(keys, t.Key)
	}
	prefix := strings.Join(keys, ", ") + ": "

	summary := ticket.Summary
	if opts.TitleMaxLength <= 0 {
		return prefix + summary
	}

	// Keys are never cut. When they leave no room for "x...", the title is just the keys.
	budget := opts.TitleMaxLength - utf8.RuneCountInString(prefix)
	if utf8.RuneCountInString(summary) > budget && budget < len("x...") {
		return strings.Join(keys, ", ")
	}
	return prefix + truncate(summary, budget)
}

func composeBody(ticket *jira.Ticket, commitMessage string, opts Options) string {
	description := strings.TrimSpace(opts.Body)
	if description == "" {
		description = strings.TrimSpace(commitMessage)
	}

	var sb strings.Builder

	sb.WriteString("## Description\n\n")
	sb.WriteString(description)
	sb.WriteString("\n")

	if ticket == nil {
		return sb.String()
	}

	sb.WriteString("\n## Jira References\n\n")
	writeRef(&sb, "Ticket", ticket.Ref())
	for _, t := range opts.Additional {
		writeRef(&sb, "Ticket", t.Ref())
	}
	if ticket.Epic != nil {
		writeRef(&sb, "Epic", *ticket.Epic)
	}

	if len(ticket.Links) > 0 {
		sb.WriteString("\n## Related Issues\n\n")
		for _, l := range ticket.Links {
			sb.WriteString(fmt.Sprintf("- %s - %s (%s)\n", mdLink(l.IssueRef), l.Summary, l.Relation))
		}
	}

	return sb.String()
}

func writeRef(sb *strings.Builder, label string, ref jira.IssueRef) {
	sb.WriteString(fmt.Sprintf("- **%s:** %s - %s\n", label, mdLink(ref), ref.Summary))
}

func mdLink(ref jira.IssueRef) string {
	return fmt.Sprintf("[%s](%s)", ref.Key, ref.URL)
}

// commitSubject returns the first non-blank line of a commit message.
func commitSubject(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// truncate shortens s to maxLen runes, ending in "..." when cut.
// maxLen <= 0 disables truncation.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return strings.TrimRight(string(runes[:maxLen-3]), " ") + "..."
}
