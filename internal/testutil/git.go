package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjulian5/promote/internal/git"
)

// NewTestGitClient creates a new git client in a temporary directory with an initial commit
func NewTestGitClient(t *testing.T) *git.Client {
	tempDir := t.TempDir()
	InitRepo(t, tempDir)

	gitClient, err := git.NewClientAt(tempDir)
	require.NoError(t, err)

	CreateCommit(t, gitClient.GitRoot(), "Initial commit", "2024-01-01T00:00:00Z", map[string]string{
		"README.md": "initial\n",
	})

	return gitClient
}

// InitRepo runs git init in dir with a deterministic identity
func InitRepo(t *testing.T, dir string) {
	RunGit(t, dir, "init", "--initial-branch=main")
	RunGit(t, dir, "config", "user.email", "test@example.com")
	RunGit(t, dir, "config", "user.name", "Test User")
	RunGit(t, dir, "config", "commit.gpgsign", "false")
}

// InitBareRemote creates a bare repository usable as a push/fetch remote
func InitBareRemote(t *testing.T) string {
	dir := t.TempDir()
	RunGit(t, dir, "init", "--bare", "--initial-branch=main")
	return dir
}

// CreateCommit writes files and commits them with a fixed author date.
// Returns the new commit hash.
func CreateCommit(t *testing.T, repoDir string, message string, date string, files map[string]string) string {
	for name, content := range files {
		WriteFile(t, repoDir, name, content)
	}

	RunGit(t, repoDir, "add", "-A")

	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = repoDir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE="+date,
		"GIT_COMMITTER_DATE="+date,
	)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git commit failed: %s", string(output))

	return RunGit(t, repoDir, "rev-parse", "HEAD")
}

// WriteFile writes content to a file relative to dir, creating parents
func WriteFile(t *testing.T, dir string, name string, content string) {
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// RunGit runs a git command in dir and returns trimmed stdout
func RunGit(t *testing.T, dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s failed: %s", strings.Join(args, " "), string(output))
	return strings.TrimSpace(string(output))
}
