package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCLI builds the newver binary from the module root.
// Since this test resides in cmd/integration, the main package is two directories up ("../../").
func buildCLI(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "newver")
	buildCmd := exec.Command("go", "build", "-o", binPath, "../../")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build CLI binary: %v; build output: %s", err, out)
	}
	return binPath
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

// TestCLIBinaryDefaultFiles runs the binary against every default manifest
// kind at once, answering the regression question on stdin.
func TestCLIBinaryDefaultFiles(t *testing.T) {
	binPath := buildCLI(t)
	dir := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"package.json":      "{\n  \"name\": \"app\",\n  \"version\": \"2.0.0\"\n}\n",
		"package-lock.json": "{\n  \"name\": \"app\",\n  \"version\": \"1.0.0\",\n  \"lockfileVersion\": 3,\n  \"packages\": {\n    \"\": {\n      \"name\": \"app\",\n      \"version\": \"1.0.0\"\n    }\n  }\n}\n",
		"Cargo.toml":        "[package]\nname = \"app\"\nversion = \"1.0.0\"\nedition = \"2021\"\n",
		"snapcraft.yaml":    "name: app\nversion: '1.0.0'\ngrade: stable\n",
		"wails.json":        "{\n  \"name\": \"app\",\n  \"info\": {\n    \"productVersion\": \"1.0.0\"\n  }\n}\n",
		"go.mod":            "module example.com/app\n\ngo 1.22\n",
	})

	// package.json is ahead of 1.5.0, so newver asks; the answer is no.
	cmd := exec.Command(binPath, "1.5.0", "--commit=false")
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader("n\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("CLI command failed: %v; stdout: %s; stderr: %s", err, stdout.String(), stderr.String())
	}

	assert.Contains(t, stdout.String(), "package.json: current version 2.0.0 is newer than 1.5.0")
	assert.Equal(t, "{\n  \"name\": \"app\",\n  \"version\": \"2.0.0\"\n}\n", readFile(t, dir, "package.json"))

	assert.Equal(t, "{\n  \"name\": \"app\",\n  \"version\": \"1.5.0\",\n  \"lockfileVersion\": 3,\n  \"packages\": {\n    \"\": {\n      \"name\": \"app\",\n      \"version\": \"1.5.0\"\n    }\n  }\n}\n",
		readFile(t, dir, "package-lock.json"))

	cargo := readFile(t, dir, "Cargo.toml")
	assert.Contains(t, cargo, "1.5.0")
	assert.Contains(t, cargo, "edition")
	assert.NotContains(t, cargo, "1.0.0")

	assert.Equal(t, "name: app\nversion: '1.5.0'\ngrade: stable\n", readFile(t, dir, "snapcraft.yaml"))
	assert.Equal(t, "{\n  \"name\": \"app\",\n  \"info\": {\n    \"productVersion\": \"1.5.0\"\n  }\n}\n", readFile(t, dir, "wails.json"))
	assert.Equal(t, "module example.com/app v1.5.0\n\ngo 1.22\n", readFile(t, dir, "go.mod"))

	summary := stdout.String()
	assert.Contains(t, summary, "Files updated:")
	assert.NotContains(t, summary, "  package.json (")
}

// TestCLIBinaryExplicitDataPath checks --files with --data-paths, creating
// the field when it is missing.
func TestCLIBinaryExplicitDataPath(t *testing.T) {
	binPath := buildCLI(t)
	dir := t.TempDir()

	writeFiles(t, dir, map[string]string{
		"deploy/app.yaml": "name: app\n",
	})

	cmd := exec.Command(binPath, "3.1.0-rc.1", "--commit=false",
		"-f", "deploy/app.yaml", "-d", "release.versions[1]")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)

	assert.Equal(t, "name: app\nrelease:\n  versions:\n    - null\n    - 3.1.0-rc.1\n", readFile(t, dir, "deploy/app.yaml"))
}
