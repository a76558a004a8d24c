package newver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records git invocations and answers from a table keyed by the
// git subcommand.
type fakeRunner struct {
	calls   [][]string
	results map[string]CommandResult
	errs    map[string]error
}

func (r *fakeRunner) Run(_ context.Context, args ...string) (CommandResult, error) {
	r.calls = append(r.calls, args)
	if err := r.errs[args[0]]; err != nil {
		return CommandResult{}, err
	}
	return r.results[args[0]], nil
}

func (r *fakeRunner) commands() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}

func TestCommitMessage(t *testing.T) {
	assert.Equal(t, "update version to 1.2.3", CommitMessage("", "1.2.3"))
	assert.Equal(t, "chore: update version to 1.2.3", CommitMessage("chore", "1.2.3"))
}

func TestGitCommands(t *testing.T) {
	r := &fakeRunner{}
	g := Git{Runner: r, Logger: discardLogger()}
	ctx := context.Background()

	require.NoError(t, g.Check(ctx))
	require.NoError(t, g.Commit(ctx, "1.2.3", []string{"package.json", "go.mod"}, "release"))
	require.NoError(t, g.Tag(ctx, "1.2.3"))
	require.NoError(t, g.Push(ctx))
	require.NoError(t, g.PushTag(ctx, "1.2.3"))

	assert.Equal(t, [][]string{
		{"--version"},
		{"add", "package.json", "go.mod"},
		{"commit", "-m", "release: update version to 1.2.3"},
		{"tag", "v1.2.3"},
		{"push"},
		{"push", "origin", "v1.2.3"},
	}, r.calls)
}

func TestGitFailures(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		result  CommandResult
		runErr  error
		wantErr bool
	}{
		{name: "clean", result: CommandResult{Stdout: "[main 1a2b3c] update version\n"}},
		{name: "non-zero exit", result: CommandResult{Stderr: "fatal: not a git repository\n", ExitCode: 128}, wantErr: true},
		{name: "non-zero exit without output", result: CommandResult{ExitCode: 1}, wantErr: true},
		{name: "stderr on success", result: CommandResult{Stderr: "error: something broke\n"}, wantErr: true},
		{name: "warnings on success", result: CommandResult{Stderr: "warning: LF will be replaced by CRLF\nhint: use core.autocrlf\n"}},
		{name: "could not start", runErr: exec.ErrNotFound, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &fakeRunner{
				results: map[string]CommandResult{"tag": tc.result},
				errs:    map[string]error{"tag": tc.runErr},
			}
			err := Git{Runner: r, Logger: discardLogger()}.Tag(ctx, "1.0.0")
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrVersionControl)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGitPushStderrIsProgress(t *testing.T) {
	r := &fakeRunner{results: map[string]CommandResult{
		"push": {Stderr: "To github.com:foo/bar.git\n   1a2b3c..4d5e6f  main -> main\n"},
	}}
	var logs bytes.Buffer
	g := Git{Runner: r, Logger: NewLogger(&logs, false, false)}

	require.NoError(t, g.Push(context.Background()))
	assert.Contains(t, logs.String(), "git push")
	assert.Contains(t, logs.String(), "main -> main")
}

func TestGitWithoutLogger(t *testing.T) {
	r := &fakeRunner{results: map[string]CommandResult{
		"--version": {Stdout: "git version 2.43.0\n"},
		"add":       {Stdout: "staged\n"},
		"tag":       {Stderr: "fatal: tag 'v1.0.0' already exists\n", ExitCode: 128},
	}}
	g := Git{Runner: r}
	ctx := context.Background()

	require.NoError(t, g.Check(ctx))
	require.NoError(t, g.Commit(ctx, "1.0.0", []string{"package.json"}, ""))
	assert.ErrorIs(t, g.Tag(ctx, "1.0.0"), ErrVersionControl)
	assert.Equal(t, []string{"--version", "add package.json", "commit -m update version to 1.0.0", "tag v1.0.0"}, r.commands())
}

func TestGitCheckUnavailable(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{"--version": exec.ErrNotFound}}
	err := Git{Runner: r, Logger: discardLogger()}.Check(context.Background())
	assert.ErrorIs(t, err, ErrVersionControl)
	assert.Contains(t, err.Error(), "git is not available")
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	r := ExecRunner{Dir: dir}
	ctx := context.Background()

	res, err := r.Run(ctx, "--version")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "git version")

	// Not a repository yet.
	res, err = r.Run(ctx, "status")
	require.NoError(t, err)
	assert.NotEqual(t, 0, res.ExitCode)
	assert.NotEmpty(t, res.Stderr)

	_, err = ExecRunner{Dir: dir, Binary: filepath.Join(dir, "no-such-git")}.Run(ctx, "--version")
	assert.Error(t, err)
}

func TestGitAgainstRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	ctx := context.Background()
	r := ExecRunner{Dir: dir}
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
	} {
		res, err := r.Run(ctx, args...)
		require.NoError(t, err)
		require.Equal(t, 0, res.ExitCode, res.Stderr)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"version": "1.0.0"}`), 0o644))

	g := Git{Runner: r, Logger: discardLogger()}
	require.NoError(t, g.Check(ctx))
	require.NoError(t, g.Commit(ctx, "1.0.0", []string{"package.json"}, "chore"))
	require.NoError(t, g.Tag(ctx, "1.0.0"))

	res, err := r.Run(ctx, "log", "-1", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "chore: update version to 1.0.0", strings.TrimSpace(res.Stdout))

	res, err = r.Run(ctx, "tag")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", strings.TrimSpace(res.Stdout))

	// Tagging twice fails.
	err = g.Tag(ctx, "1.0.0")
	assert.True(t, errors.Is(err, ErrVersionControl))
}
