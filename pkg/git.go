package newver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// CommandResult is the captured outcome of a finished command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs git with the given arguments and waits for it to
// finish. A non-zero exit is reported in the result, not as an error; the
// error is reserved for commands that could not run at all.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) (CommandResult, error)
}

// ExecRunner runs git as a child process.
type ExecRunner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Binary is the git executable, "git" when empty.
	Binary string
}

// Run implements CommandRunner.
func (r ExecRunner) Run(ctx context.Context, args ...string) (CommandResult, error) {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, err
	}
	return res, nil
}

// Git runs the commit, tag and push steps through a CommandRunner.
type Git struct {
	Runner CommandRunner
	Logger *log.Logger // Nil discards output.
}

func (g Git) logger() *log.Logger {
	if g.Logger == nil {
		return discardLogger()
	}
	return g.Logger
}

// CommitMessage builds the commit message for version, with an optional
// conventional commit prefix such as "chore".
func CommitMessage(prefix, version string) string {
	if prefix != "" {
		prefix += ": "
	}
	return prefix + "update version to " + version
}

// Check verifies that git can be run.
func (g Git) Check(ctx context.Context) error {
	res, err := g.Runner.Run(ctx, "--version")
	if err != nil || res.ExitCode != 0 {
		return &DetailError{
			Type:    "git unavailable",
			Message: "git is not available on the system",
			Cause:   ErrVersionControl,
		}
	}
	g.logger().Debug("found git", "version", strings.TrimSpace(res.Stdout))
	return nil
}

// Commit stages files and commits them.
func (g Git) Commit(ctx context.Context, version string, files []string, prefix string) error {
	if err := g.exec(ctx, append([]string{"add"}, files...)...); err != nil {
		return err
	}
	return g.exec(ctx, "commit", "-m", CommitMessage(prefix, version))
}

// Tag tags the current commit as v<version>.
func (g Git) Tag(ctx context.Context, version string) error {
	return g.exec(ctx, "tag", "v"+version)
}

// Push pushes the current branch.
func (g Git) Push(ctx context.Context) error {
	return g.exec(ctx, "push")
}

// PushTag pushes the v<version> tag to origin.
func (g Git) PushTag(ctx context.Context, version string) error {
	return g.exec(ctx, "push", "origin", "v"+version)
}

func (g Git) exec(ctx context.Context, args ...string) error {
	logger := g.logger()
	logger.Info(StyleCommand.Render("▸") + " git " + joinArgs(args))

	res, err := g.Runner.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("%w: git %s: %w", ErrVersionControl, args[0], err)
	}
	if out := cleanOutput(res.Stdout); out != "" {
		logger.Info(StyleDim.Render(out))
	}

	stderr := cleanOutput(res.Stderr)
	if res.ExitCode != 0 {
		if stderr != "" {
			logger.Error(stderr)
		}
		return &DetailError{
			Type:    "git failed",
			Message: fmt.Sprintf("git %s exited with status %d", args[0], res.ExitCode),
			Cause:   ErrVersionControl,
		}
	}
	if stderr != "" {
		if informational(args, stderr) {
			logger.Info(StyleDim.Render(stderr))
			return nil
		}
		logger.Error(stderr)
		return &DetailError{
			Type:    "git failed",
			Message: fmt.Sprintf("git %s reported an error", args[0]),
			Cause:   ErrVersionControl,
		}
	}
	return nil
}

// informational reports whether stderr output of a successful command is
// progress or advice rather than a failure. git push always reports on
// stderr; other commands may only emit warning and hint lines.
func informational(args []string, stderr string) bool {
	if len(args) > 0 && args[0] == "push" {
		return true
	}
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "warning:") && !strings.HasPrefix(line, "hint:") {
			return false
		}
	}
	return true
}

func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
