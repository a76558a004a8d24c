package newver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Prompter asks the user yes/no questions. Implementations block until
// the user answers.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmUpdate decides whether a field holding oldVersion may be set to
// newVersion. Equal versions never proceed. A change of suffix always
// proceeds. Otherwise, unless ignoreRegression is set, moving to a
// numerically lower version asks p first.
func ConfirmUpdate(ctx context.Context, p Prompter, ignoreRegression bool, oldVersion, newVersion, label string) (bool, error) {
	oldVersion = normalizeVersion(oldVersion)
	newVersion = normalizeVersion(newVersion)
	if oldVersion == newVersion {
		return false, nil
	}

	oldNumeric, oldSuffix := splitSuffix(oldVersion)
	newNumeric, newSuffix := splitSuffix(newVersion)
	if oldSuffix != newSuffix {
		return true, nil
	}

	if !ignoreRegression && CompareVersions(oldNumeric, newNumeric) == Greater {
		return p.Confirm(ctx, fmt.Sprintf("%s: current version %s is newer than %s. Update anyway?", label, oldVersion, newVersion))
	}
	return true, nil
}

// TerminalPrompter asks questions on the terminal. When In is a TTY it
// shows a confirm form; otherwise it reads a line answer where an empty
// line, "y" or "yes" mean yes.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter returns a prompter bound to the process's stdin and stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

// Confirm implements Prompter.
func (p *TerminalPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return p.confirmForm(ctx, question)
	}
	return p.confirmLine(question)
}

func (p *TerminalPrompter) confirmForm(ctx context.Context, question string) (bool, error) {
	answer := true
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	)).WithInput(p.In).WithOutput(p.Out).WithShowHelp(false)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return false, fmt.Errorf("%w: %s", ErrAborted, question)
		}
		return false, fmt.Errorf("%w: prompt failed: %w", ErrAborted, err)
	}
	return answer, nil
}

func (p *TerminalPrompter) confirmLine(question string) (bool, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprintf(p.Out, "%s %s %s ", StylePrompt.Render("▸"), question, StyleDim.Render("(Y/n)"))

	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		fmt.Fprintln(p.Out)
		return false, fmt.Errorf("%w: no answer to %q", ErrAborted, question)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}
