package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/bjulian5/promote/internal/model"
)

// MockGitClient is a testify mock of the git backend. It satisfies every
// narrow GitClient interface declared by the engine packages.
type MockGitClient struct {
	mock.Mock
}

func (m *MockGitClient) ResolveRef(ref string) (string, bool) {
	args := m.Called(ref)
	return args.String(0), args.Bool(1)
}

func (m *MockGitClient) CurrentBranch() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockGitClient) ListCommits(ref string, count int) ([]model.Commit, error) {
	args := m.Called(ref, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Commit), args.Error(1)
}

func (m *MockGitClient) ListRange(base string, head string, limit int) ([]model.Commit, error) {
	args := m.Called(base, head, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Commit), args.Error(1)
}

func (m *MockGitClient) CommitCount(ref string) (int, error) {
	args := m.Called(ref)
	return args.Int(0), args.Error(1)
}

func (m *MockGitClient) FilesChanged(commitHash string) ([]string, error) {
	args := m.Called(commitHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGitClient) FilesChangedWithStats(commitHash string) ([]model.FileStat, error) {
	args := m.Called(commitHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileStat), args.Error(1)
}

func (m *MockGitClient) DiffFiles(refA string, refB string) ([]string, error) {
	args := m.Called(refA, refB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGitClient) DiffStat(refA string, refB string) (string, error) {
	args := m.Called(refA, refB)
	return args.String(0), args.Error(1)
}

func (m *MockGitClient) AheadBehind(refA string, refB string) (int, int, error) {
	args := m.Called(refA, refB)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockGitClient) IsAncestor(ancestor string, descendant string) (bool, error) {
	args := m.Called(ancestor, descendant)
	return args.Bool(0), args.Error(1)
}

func (m *MockGitClient) HasUncommittedTrackedChanges() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockGitClient) ConflictedFiles() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGitClient) IsCherryPickInProgress() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockGitClient) Checkout(ref string) error {
	args := m.Called(ref)
	return args.Error(0)
}

func (m *MockGitClient) CherryPick(commitHash string) error {
	args := m.Called(commitHash)
	return args.Error(0)
}

func (m *MockGitClient) CherryPickContinue() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockGitClient) CherryPickAbort() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockGitClient) Push(remote string, localRef string, remoteBranch string) error {
	args := m.Called(remote, localRef, remoteBranch)
	return args.Error(0)
}

func (m *MockGitClient) PushWithLease(remote string, localRef string, remoteBranch string, expect string) error {
	args := m.Called(remote, localRef, remoteBranch, expect)
	return args.Error(0)
}

func (m *MockGitClient) Fetch(remote string) error {
	args := m.Called(remote)
	return args.Error(0)
}

func (m *MockGitClient) BranchCreate(name string, start string) error {
	args := m.Called(name, start)
	return args.Error(0)
}

func (m *MockGitClient) RemoteList() ([]model.RemoteTarget, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RemoteTarget), args.Error(1)
}

func (m *MockGitClient) RemoteAdd(name string, url string) error {
	args := m.Called(name, url)
	return args.Error(0)
}

func (m *MockGitClient) RemoteHead(remote string, branch string) (string, bool, error) {
	args := m.Called(remote, branch)
	return args.String(0), args.Bool(1), args.Error(2)
}
