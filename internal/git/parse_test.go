package git

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/promote/internal/model"
)

func TestParseLog(t *testing.T) {
	output := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\x1fFix: handle a|b\x1f2024-03-02T10:00:00+01:00\n" +
		"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\x1fInitial\x1f2024-03-01T00:00:00Z\n"

	commits, err := parseLog(output)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "aaaaaaa", commits[0].ShortHash)
	assert.Equal(t, "Fix: handle a|b", commits[0].Subject)
	assert.True(t, commits[0].AuthorDate.Equal(time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Initial", commits[1].Subject)

	_, err = parseLog("broken line\n")
	assert.Error(t, err)

	commits, err = parseLog("")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestParseNumstat(t *testing.T) {
	output := "10\t2\tsrc/main.go\x00-\t-\tassets/logo.png\x00\n3\t0\tfile .txt \x00"

	stats, err := parseNumstat(output)
	require.NoError(t, err)
	assert.Equal(t, []model.FileStat{
		{Path: "src/main.go", Added: 10, Removed: 2},
		{Path: "assets/logo.png", Added: -1, Removed: -1, Binary: true},
		{Path: "file .txt ", Added: 3, Removed: 0},
	}, stats)

	_, err = parseNumstat("garbage\x00")
	assert.Error(t, err)
}

func TestParseLeftRight(t *testing.T) {
	left, right, err := parseLeftRight("3\t5\n")
	require.NoError(t, err)
	assert.Equal(t, 3, left)
	assert.Equal(t, 5, right)

	_, _, err = parseLeftRight("x y")
	assert.Error(t, err)
}

func TestParseRemotes(t *testing.T) {
	output := "origin\tgit@github.com:acme/app.git (fetch)\n" +
		"origin\tgit@github.com:acme/app.git (push)\n" +
		"mirror\thttps://gitlab.com/acme/app.git (fetch)\n" +
		"mirror\tssh://push.gitlab.com/acme/app.git (push)\n"

	remotes := parseRemotes(output)
	assert.Equal(t, []model.RemoteTarget{
		{Name: "origin", FetchURL: "git@github.com:acme/app.git", PushURL: "git@github.com:acme/app.git"},
		{Name: "mirror", FetchURL: "https://gitlab.com/acme/app.git", PushURL: "ssh://push.gitlab.com/acme/app.git"},
	}, remotes)
	assert.Empty(t, parseRemotes(""))
}

func TestParseLsRemote(t *testing.T) {
	output := "1111111111111111111111111111111111111111\trefs/heads/main\n"

	hash, ok := parseLsRemote(output, "refs/heads/main")
	assert.True(t, ok)
	assert.Equal(t, "1111111111111111111111111111111111111111", hash)

	_, ok = parseLsRemote(output, "refs/heads/release")
	assert.False(t, ok)
}
