package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter asks questions on the command's stdin/stdout.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readPassword reads without echo. nil when stdin is not a terminal,
	// in which case secrets are read like any other line.
	readPassword func() ([]byte, error)
}

func newPrompter(cmd *cobra.Command) *prompter {
	stdin := cmd.InOrStdin()
	p := &prompter{
		in:  bufio.NewReader(stdin),
		out: cmd.OutOrStdout(),
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.readPassword = func() ([]byte, error) {
			return term.ReadPassword(int(f.Fd()))
		}
	}
	return p
}

// ask prompts for a value, returning def when the answer is empty.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = def
	}
	if answer == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return answer, nil
}

// askSecret prompts for a value without echoing it on a terminal.
func (p *prompter) askSecret(label string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s (input hidden): ", label)

	var answer string
	if p.readPassword != nil {
		b, err := p.readPassword()
		_, _ = fmt.Fprintln(p.out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		answer = strings.TrimSpace(string(b))
	} else {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		answer = line
	}

	if answer == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return answer, nil
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input: stdin was closed")
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
