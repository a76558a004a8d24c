package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain triggers the CLI as a subprocess when GO_HELPER_PROCESS is set.
func TestMain(m *testing.M) {
	if os.Getenv("GO_HELPER_PROCESS") == "1" {
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// runCLI runs the CLI in helper process mode inside dir with optional extra
// environment vars. It returns the combined output and the exit code.
func runCLI(t *testing.T, dir string, args []string, extraEnv ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(os.Args[0], args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GO_HELPER_PROCESS=1",
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	cmd.Env = append(cmd.Env, extraEnv...)
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	require.NoError(t, err)
	return string(out), 0
}

// gitRepo creates a git repository in a temp dir holding files, with
// everything committed.
func gitRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGit := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v\n%s", args, out)
		return string(out)
	}
	runGit("init")
	runGit("config", "user.email", "test@example.com")
	runGit("config", "user.name", "Test User")
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	runGit("add", ".")
	runGit("commit", "-m", "initial")
	return dir
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v\n%s", args, out)
	return strings.TrimSpace(string(out))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCLIHelp(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), []string{"--help"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--data-paths")
}

func TestCLIVersionFlag(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), []string{"--version"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out, Version)
}

func TestCLIMissingVersionArg(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), []string{})
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, out, "Error: <version> positional argument is required")
}

func TestCLIInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"version": "1.0.0"}`), 0o644))

	out, code := runCLI(t, dir, []string{"1.2", "--commit=false"})
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, out, "invalid version")
	assert.JSONEq(t, `{"version": "1.0.0"}`, readFile(t, filepath.Join(dir, "package.json")))
}

func TestCLITagWithoutCommit(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), []string{"1.2.3", "--commit=false", "--tag"})
	assert.Equal(t, ExitUsageError, code)
	assert.Contains(t, out, "need a commit")
}

func TestCLIMissingExplicitFile(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), []string{"1.2.3", "--commit=false", "-f", "nope.json"})
	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, out, "nope.json")
}

func TestCLINoCandidateFiles(t *testing.T) {
	out, code := runCLI(t, t.TempDir(), []string{"1.2.3", "--commit=false"})
	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, out, "--files")
}

func TestCLIUpdateWithoutGit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "app", "version": "1.2.3"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"app\"\nversion = \"1.2.3\"\n"), 0o644))

	out, code := runCLI(t, dir, []string{"v1.2.4", "--commit=false"})
	require.Equal(t, 0, code, out)

	assert.Contains(t, out, "New Version: 1.2.4")
	assert.Contains(t, out, "package.json (version)")
	assert.Contains(t, out, "Cargo.toml (package.version)")
	assert.JSONEq(t, `{"name": "app", "version": "1.2.4"}`, readFile(t, filepath.Join(dir, "package.json")))
	cargo := readFile(t, filepath.Join(dir, "Cargo.toml"))
	assert.Contains(t, cargo, "1.2.4")
	assert.NotContains(t, cargo, "1.2.3")
}

func TestCLICommitAndTagIntegration(t *testing.T) {
	dir := gitRepo(t, map[string]string{
		"package.json": "{\n  \"name\": \"app\",\n  \"version\": \"1.2.3\"\n}\n",
		"go.mod":       "module example.com/app\n\ngo 1.22\n",
	})

	out, code := runCLI(t, dir, []string{"2.0.0", "--tag", "--push=false", "--prefix", "chore"})
	require.Equal(t, 0, code, out)

	assert.Equal(t, "{\n  \"name\": \"app\",\n  \"version\": \"2.0.0\"\n}\n", readFile(t, filepath.Join(dir, "package.json")))
	assert.Equal(t, "module example.com/app v2.0.0\n\ngo 1.22\n", readFile(t, filepath.Join(dir, "go.mod")))

	assert.Equal(t, "chore: update version to 2.0.0", gitOutput(t, dir, "log", "-1", "--format=%s"))
	assert.Equal(t, "v2.0.0", gitOutput(t, dir, "tag"))
	assert.Empty(t, gitOutput(t, dir, "status", "--porcelain"))
}

// TestCLIDryRunIntegration checks that a dry run reports the update but
// leaves the files and the repository alone.
func TestCLIDryRunIntegration(t *testing.T) {
	dir := gitRepo(t, map[string]string{
		"package.json": `{"version": "1.2.3"}`,
	})

	out, code := runCLI(t, dir, []string{"1.2.4", "--dry-run", "--commit", "--tag"})
	require.Equal(t, 0, code, out)

	assert.Contains(t, out, "Dry run complete")
	assert.Contains(t, out, "Files that would be updated:")
	assert.Equal(t, `{"version": "1.2.3"}`, readFile(t, filepath.Join(dir, "package.json")))
	assert.Empty(t, gitOutput(t, dir, "tag"))
	assert.Equal(t, "initial", gitOutput(t, dir, "log", "-1", "--format=%s"))
}

func TestCLIConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.json"), []byte(`{"meta": {"release": "1.0.0"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".newver.yaml"), []byte(`files:
  - custom.json
data-paths:
  - meta.release
commit: false
`), 0o644))

	out, code := runCLI(t, dir, []string{"1.1.0"})
	require.Equal(t, 0, code, out)
	assert.JSONEq(t, `{"meta": {"release": "1.1.0"}}`, readFile(t, filepath.Join(dir, "custom.json")))
}

func TestCLIEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"version": "1.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wails.json"), []byte(`{"info": {"productVersion": "1.0.0"}}`), 0o644))

	out, code := runCLI(t, dir, []string{"1.1.0"}, "NEWVER_FILES=wails.json", "NEWVER_COMMIT=false")
	require.Equal(t, 0, code, out)
	assert.JSONEq(t, `{"info": {"productVersion": "1.1.0"}}`, readFile(t, filepath.Join(dir, "wails.json")))
	assert.JSONEq(t, `{"version": "1.0.0"}`, readFile(t, filepath.Join(dir, "package.json")))
}

func TestCLIQuiet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"version": "1.0.0"}`), 0o644))

	out, code := runCLI(t, dir, []string{"1.1.0", "-q", "--commit=false"})
	require.Equal(t, 0, code, out)
	assert.Empty(t, strings.TrimSpace(out))
}
