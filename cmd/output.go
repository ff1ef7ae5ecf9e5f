package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	purple    = lipgloss.Color("99")
	gray      = lipgloss.Color("245")
	lightGray = lipgloss.Color("241")
	green     = lipgloss.Color("42")
	red       = lipgloss.Color("196")
	yellow    = lipgloss.Color("214")

	headingStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(gray)
	dimStyle     = lipgloss.NewStyle().Foreground(lightGray)
	okStyle      = lipgloss.NewStyle().Foreground(green)
	failStyle    = lipgloss.NewStyle().Foreground(red)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
)

const defaultWrapWidth = 100

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or defaultWrapWidth when unknown.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWrapWidth
}

// renderMarkdown renders md for w. Non-terminals get the raw markdown so the
// output can be piped or redirected as is.
func renderMarkdown(w io.Writer, md string) string {
	if !isTerminal(w) {
		return md
	}

	width := terminalWidth(w) - 4
	if width < 40 {
		width = 40
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// oneLine collapses whitespace so an error prints on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
