package git_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/promote/internal/git"
	"github.com/bjulian5/promote/internal/testutil"
)

func TestClient_Commits(t *testing.T) {
	client := testutil.NewTestGitClient(t)
	root := client.GitRoot()

	first := testutil.CreateCommit(t, root, "Add feature", "2024-03-01T00:00:00Z", map[string]string{"feature.go": "package main\n"})
	second := testutil.CreateCommit(t, root, "Fix feature", "2024-03-02T00:00:00Z", map[string]string{"feature.go": "package main\n\nfunc main() {}\n"})

	commits, err := client.ListCommits("HEAD", 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, second, commits[0].Hash)
	assert.Equal(t, "Fix feature", commits[0].Subject)
	assert.Equal(t, first, commits[1].Hash)

	hash, ok := client.ResolveRef("HEAD~1")
	assert.True(t, ok)
	assert.Equal(t, first, hash)

	_, ok = client.ResolveRef("does-not-exist")
	assert.False(t, ok)

	count, err := client.CommitCount("HEAD")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	branch, err := client.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	require.NoError(t, client.Checkout(first))
	branch, err = client.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, first, branch, "detached HEAD reports the commit hash")
}

func TestClient_FilesChangedWithStats(t *testing.T) {
	client := testutil.NewTestGitClient(t)
	root := client.GitRoot()

	hash := testutil.CreateCommit(t, root, "Add files", "2024-03-01T00:00:00Z", map[string]string{
		"docs/guide.md": "line one\nline two\n",
		"image.bin":     "\x00\x01\x02binary\x00",
	})

	stats, err := client.FilesChangedWithStats(hash)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byPath := map[string]bool{}
	for _, s := range stats {
		byPath[s.Path] = s.Binary
		if s.Path == "docs/guide.md" {
			assert.Equal(t, 2, s.Added)
			assert.Equal(t, 0, s.Removed)
		}
	}
	assert.False(t, byPath["docs/guide.md"])
	assert.True(t, byPath["image.bin"])

	files, err := client.FilesChanged(hash)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs/guide.md", "image.bin"}, files)
}

func TestClient_HasUncommittedTrackedChanges(t *testing.T) {
	client := testutil.NewTestGitClient(t)
	root := client.GitRoot()

	dirty, err := client.HasUncommittedTrackedChanges()
	require.NoError(t, err)
	assert.False(t, dirty)

	testutil.WriteFile(t, root, "untracked.txt", "new")
	dirty, err = client.HasUncommittedTrackedChanges()
	require.NoError(t, err)
	assert.False(t, dirty, "untracked files are ignored")

	testutil.WriteFile(t, root, "README.md", "changed\n")
	dirty, err = client.HasUncommittedTrackedChanges()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestClient_Divergence(t *testing.T) {
	client := testutil.NewTestGitClient(t)
	root := client.GitRoot()

	testutil.RunGit(t, root, "checkout", "-b", "feature")
	testutil.CreateCommit(t, root, "Feature one", "2024-03-01T00:00:00Z", map[string]string{"a.txt": "a\n"})
	testutil.CreateCommit(t, root, "Feature two", "2024-03-02T00:00:00Z", map[string]string{"b.txt": "b\n"})

	ahead, err := client.IsAncestor("main", "feature")
	require.NoError(t, err)
	assert.True(t, ahead)

	left, right, err := client.AheadBehind("main", "feature")
	require.NoError(t, err)
	assert.Equal(t, 0, left)
	assert.Equal(t, 2, right)

	testutil.RunGit(t, root, "checkout", "main")
	testutil.CreateCommit(t, root, "Main work", "2024-03-03T00:00:00Z", map[string]string{"a.txt": "main\n"})

	isAncestor, err := client.IsAncestor("main", "feature")
	require.NoError(t, err)
	assert.False(t, isAncestor)

	left, right, err = client.AheadBehind("main", "feature")
	require.NoError(t, err)
	assert.Equal(t, 1, left)
	assert.Equal(t, 2, right)

	files, err := client.DiffFiles("feature", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)

	commits, err := client.ListRange("main", "feature", 0)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "Feature two", commits[0].Subject)

	stat, err := client.DiffStat("main", "feature")
	require.NoError(t, err)
	assert.Contains(t, stat, "b.txt")
}

func TestClient_CherryPickConflict(t *testing.T) {
	client := testutil.NewTestGitClient(t)
	root := client.GitRoot()

	testutil.RunGit(t, root, "checkout", "-b", "dev")
	devCommit := testutil.CreateCommit(t, root, "Dev change", "2024-03-01T00:00:00Z", map[string]string{"README.md": "dev\n"})
	testutil.RunGit(t, root, "checkout", "main")
	testutil.CreateCommit(t, root, "Main change", "2024-03-02T00:00:00Z", map[string]string{"README.md": "main\n"})

	err := client.CherryPick(devCommit)
	require.Error(t, err)

	var cmdErr *git.CommandError
	assert.ErrorAs(t, err, &cmdErr)
	assert.True(t, client.IsCherryPickInProgress())

	conflicted, err := client.ConflictedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, conflicted)

	require.NoError(t, client.CherryPickAbort())
	assert.False(t, client.IsCherryPickInProgress())
}

func TestClient_RemotesAndPush(t *testing.T) {
	client := testutil.NewTestGitClient(t)
	root := client.GitRoot()
	bare := testutil.InitBareRemote(t)

	require.NoError(t, client.RemoteAdd("origin", bare))

	remotes, err := client.RemoteList()
	require.NoError(t, err)
	require.Len(t, remotes, 1)
	assert.Equal(t, "origin", remotes[0].Name)
	assert.Equal(t, bare, remotes[0].URL())

	_, exists, err := client.RemoteHead("origin", "release")
	require.NoError(t, err)
	assert.False(t, exists)

	head := testutil.RunGit(t, root, "rev-parse", "HEAD")
	require.NoError(t, client.Push("origin", "HEAD", "release"))

	remoteHead, exists, err := client.RemoteHead("origin", "release")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, head, remoteHead)

	require.NoError(t, client.Fetch("origin"))
	hash, ok := client.ResolveRef("origin/release")
	assert.True(t, ok)
	assert.Equal(t, head, hash)

	require.NoError(t, client.BranchCreate("saved", "HEAD"))
	_, ok = client.ResolveRef("saved")
	assert.True(t, ok)
}
