package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/model"
)

// Client provides git operations for a repository
type Client struct {
	gitRoot string
	// stats caches numstat output per commit hash; commits are immutable
	stats *cache.Cache
}

// NewClient creates a new git client for the current directory
func NewClient() (*Client, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewClientAt(wd)
}

// NewClientAt creates a new git client for the repository containing dir
func NewClientAt(dir string) (*Client, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotGitRepo, dir)
	}
	return &Client{
		gitRoot: strings.TrimSpace(string(output)),
		stats:   cache.New(30*time.Minute, time.Hour),
	}, nil
}

// GitRoot returns the root directory of the git repository
func (c *Client) GitRoot() string {
	return c.gitRoot
}

// run executes git with args in the repository root and returns stdout
func (c *Client) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.gitRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logging.Logger.Debug("git", "args", args, "duration", time.Since(start), "error", err)
	if err != nil {
		return stdout.String(), &CommandError{
			Args:   args,
			Output: strings.TrimSpace(stderr.String() + "\n" + stdout.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

// exitCode extracts the process exit code from a CommandError, or -1
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// GitDir returns the absolute path of the repository's .git directory
func (c *Client) GitDir() (string, error) {
	out, err := c.run("rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to locate git directory: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ResolveRef returns the full commit hash a ref points to.
// The second return value is false when the ref does not exist.
func (c *Client) ResolveRef(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	out, err := c.run("rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// CurrentBranch returns the checked out branch name, or the commit hash
// when HEAD is detached
func (c *Client) CurrentBranch() (string, error) {
	out, err := c.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	branch := strings.TrimSpace(out)
	if branch != "HEAD" {
		return branch, nil
	}

	out, err = c.run("rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve detached HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ListCommits returns up to count commits reachable from ref, newest first
func (c *Client) ListCommits(ref string, count int) ([]model.Commit, error) {
	return c.ListRange("", ref, count)
}

// ListRange returns commits reachable from head but not from base, newest
// first. An empty base lists all of head's history. A limit <= 0 means no limit.
func (c *Client) ListRange(base string, head string, limit int) ([]model.Commit, error) {
	args := []string{"log", "--no-color", "--format=" + logFormat}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	if base != "" {
		args = append(args, fmt.Sprintf("%s..%s", base, head))
	} else {
		args = append(args, head)
	}
	args = append(args, "--")

	out, err := c.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits for %s: %w", head, err)
	}
	return parseLog(out)
}

// CommitCount returns the number of commits reachable from ref
func (c *Client) CommitCount(ref string) (int, error) {
	out, err := c.run("rev-list", "--count", ref)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits on %s: %w", ref, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return n, nil
}

// FilesChanged returns the paths touched by a commit
func (c *Client) FilesChanged(commitHash string) ([]string, error) {
	stats, err := c.FilesChangedWithStats(commitHash)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(stats))
	for _, s := range stats {
		paths = append(paths, s.Path)
	}
	return paths, nil
}

// FilesChangedWithStats returns per-file added/removed line counts for a commit
func (c *Client) FilesChangedWithStats(commitHash string) ([]model.FileStat, error) {
	if cached, ok := c.stats.Get(commitHash); ok {
		return append([]model.FileStat(nil), cached.([]model.FileStat)...), nil
	}

	out, err := c.run("diff-tree", "--no-commit-id", "--numstat", "-r", "--root", "-z", commitHash)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for %s: %w", model.ShortHash(commitHash), err)
	}

	stats, err := parseNumstat(out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stats for %s: %w", model.ShortHash(commitHash), err)
	}

	c.stats.SetDefault(commitHash, stats)
	return append([]model.FileStat(nil), stats...), nil
}

// DiffFiles returns files changed on refB since its merge base with refA.
// Fails when the two histories share no common ancestor.
func (c *Client) DiffFiles(refA string, refB string) ([]string, error) {
	out, err := c.run("diff", "--no-color", "--name-only", "-z", fmt.Sprintf("%s...%s", refA, refB), "--")
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s...%s: %w", refA, refB, err)
	}
	return splitNul(out), nil
}

// DiffStat returns the human-readable diffstat between two refs
func (c *Client) DiffStat(refA string, refB string) (string, error) {
	out, err := c.run("diff", "--no-color", "--stat", refA, refB, "--")
	if err != nil {
		return "", fmt.Errorf("failed to diffstat %s %s: %w", refA, refB, err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// AheadBehind returns the number of commits only reachable from refA (left)
// and only reachable from refB (right)
func (c *Client) AheadBehind(refA string, refB string) (int, int, error) {
	out, err := c.run("rev-list", "--left-right", "--count", fmt.Sprintf("%s...%s", refA, refB))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compare %s and %s: %w", refA, refB, err)
	}
	return parseLeftRight(out)
}

// IsAncestor reports whether ancestor is reachable from descendant
func (c *Client) IsAncestor(ancestor string, descendant string) (bool, error) {
	_, err := c.run("merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check ancestry of %s: %w", ancestor, err)
}

// HasUncommittedTrackedChanges reports staged or unstaged changes to
// tracked files. Untracked files are ignored.
func (c *Client) HasUncommittedTrackedChanges() (bool, error) {
	out, err := c.run("status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, fmt.Errorf("failed to check git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// ConflictedFiles returns the paths with unresolved merge conflicts
func (c *Client) ConflictedFiles() ([]string, error) {
	out, err := c.run("diff", "--name-only", "--diff-filter=U", "-z")
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicted files: %w", err)
	}
	return splitNul(out), nil
}

// IsCherryPickInProgress checks if a cherry-pick is waiting for resolution
func (c *Client) IsCherryPickInProgress() bool {
	out, err := c.run("rev-parse", "--git-path", "CHERRY_PICK_HEAD")
	if err != nil {
		return false
	}
	path := strings.TrimSpace(out)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.gitRoot, path)
	}
	_, err = os.Stat(path)
	return err == nil
}

// Checkout checks out ref. Remote-tracking refs leave HEAD detached.
func (c *Client) Checkout(ref string) error {
	if _, err := c.run("checkout", "--quiet", ref); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", ref, err)
	}
	return nil
}

// CherryPick cherry-picks a commit
func (c *Client) CherryPick(commitHash string) error {
	if _, err := c.run("cherry-pick", commitHash); err != nil {
		return fmt.Errorf("failed to cherry-pick %s: %w", model.ShortHash(commitHash), err)
	}
	return nil
}

// CherryPickContinue commits a resolved cherry-pick without opening an editor
func (c *Client) CherryPickContinue() error {
	if _, err := c.run("-c", "core.editor=true", "cherry-pick", "--continue"); err != nil {
		return fmt.Errorf("failed to continue cherry-pick: %w", err)
	}
	return nil
}

// CherryPickAbort abandons an in-progress cherry-pick
func (c *Client) CherryPickAbort() error {
	if _, err := c.run("cherry-pick", "--abort"); err != nil {
		return fmt.Errorf("failed to abort cherry-pick: %w", err)
	}
	return nil
}

// Push pushes localRef to refs/heads/<remoteBranch> on remote
func (c *Client) Push(remote string, localRef string, remoteBranch string) error {
	refspec := fmt.Sprintf("%s:refs/heads/%s", localRef, remoteBranch)
	if _, err := c.run("push", remote, refspec); err != nil {
		return fmt.Errorf("failed to push %s to %s/%s: %w", localRef, remote, remoteBranch, err)
	}
	return nil
}

// PushWithLease force-pushes localRef to refs/heads/<remoteBranch> only if
// the remote branch is still at expect. The lease is explicit so it does
// not depend on a remote-tracking ref being present or fresh.
func (c *Client) PushWithLease(remote string, localRef string, remoteBranch string, expect string) error {
	ref := "refs/heads/" + remoteBranch
	lease := fmt.Sprintf("--force-with-lease=%s:%s", ref, expect)
	refspec := fmt.Sprintf("%s:%s", localRef, ref)
	if _, err := c.run("push", lease, remote, refspec); err != nil {
		return fmt.Errorf("failed to force push %s to %s/%s: %w", localRef, remote, remoteBranch, err)
	}
	return nil
}

// Fetch fetches a remote, or every remote when remote is empty
func (c *Client) Fetch(remote string) error {
	args := []string{"fetch", "--quiet"}
	if remote == "" {
		args = append(args, "--all")
	} else {
		args = append(args, remote)
	}
	if _, err := c.run(args...); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remote, err)
	}
	return nil
}

// BranchCreate creates a branch at start without checking it out
func (c *Client) BranchCreate(name string, start string) error {
	if _, err := c.run("branch", name, start); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// RemoteList returns the configured remotes in configuration order
func (c *Client) RemoteList() ([]model.RemoteTarget, error) {
	out, err := c.run("remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	return parseRemotes(out), nil
}

// RemoteAdd adds a remote
func (c *Client) RemoteAdd(name string, url string) error {
	if _, err := c.run("remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// RemoteHead asks the remote directly for the tip of branch.
// The second return value is false when the branch does not exist there.
func (c *Client) RemoteHead(remote string, branch string) (string, bool, error) {
	out, err := c.run("ls-remote", "--heads", remote, "refs/heads/"+branch)
	if err != nil {
		return "", false, fmt.Errorf("failed to query %s for %s: %w", remote, branch, err)
	}
	hash, ok := parseLsRemote(out, "refs/heads/"+branch)
	return hash, ok, nil
}
