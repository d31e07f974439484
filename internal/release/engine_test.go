package release

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/testutil"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
}

func testCommit(name string, d int) model.Commit {
	hash := strings.Repeat(name, 40)[:40]
	return model.NewCommit(hash, "Commit "+name, day(d))
}

// newestFirst returns three commits as a log listing shows them
func newestFirst() []model.Commit {
	return []model.Commit{testCommit("c", 3), testCommit("b", 2), testCommit("a", 1)}
}

func testPlan(commits []model.Commit, remotes ...string) model.ReleasePlan {
	plan := model.ReleasePlan{
		Commits:      commits,
		TargetRef:    "origin/release",
		TargetBranch: "release",
	}
	for _, name := range remotes {
		plan.Remotes = append(plan.Remotes, model.RemoteTarget{Name: name, FetchURL: "git@example.com:" + name + ".git"})
	}
	return plan
}

// expectPreflight registers the read-only queries of a clean run
func expectPreflight(m *testutil.MockGitClient, remotes ...string) {
	var configured []model.RemoteTarget
	for _, name := range remotes {
		configured = append(configured, model.RemoteTarget{Name: name})
	}
	m.On("HasUncommittedTrackedChanges").Return(false, nil)
	m.On("ResolveRef", mock.Anything).Return("0123456789abcdef0123456789abcdef01234567", true)
	m.On("RemoteList").Return(configured, nil)
	m.On("CurrentBranch").Return("main", nil)
}

func pickedHashes(m *testutil.MockGitClient) []string {
	var hashes []string
	for _, call := range m.Calls {
		if call.Method == "CherryPick" {
			hashes = append(hashes, call.Arguments.String(0))
		}
	}
	return hashes
}

func hashes(commits []model.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Hash)
	}
	return out
}

type recordingReporter struct {
	steps    []string
	warnings []string
}

func (r *recordingReporter) Step(msg string) { r.steps = append(r.steps, msg) }
func (r *recordingReporter) Warn(msg string) { r.warnings = append(r.warnings, msg) }

type scriptedHandler struct {
	choices []ConflictResolution
	calls   int
}

func (h *scriptedHandler) HandleConflict(f *Fault) (ConflictResolution, error) {
	if h.calls >= len(h.choices) {
		return ConflictDeferred, fmt.Errorf("unexpected conflict for %s", f.Commit.ShortHash)
	}
	choice := h.choices[h.calls]
	h.calls++
	return choice, nil
}

func TestApplyOrder(t *testing.T) {
	testCases := []struct {
		desc     string
		input    []model.Commit
		expected []string
	}{
		{
			desc:     "newest first selection is reversed",
			input:    newestFirst(),
			expected: []string{"a", "b", "c"},
		},
		{
			desc:     "pick order does not matter",
			input:    []model.Commit{testCommit("c", 3), testCommit("a", 1), testCommit("b", 2)},
			expected: []string{"a", "b", "c"},
		},
		{
			desc:     "same date keeps reversed selection order",
			input:    []model.Commit{testCommit("y", 5), testCommit("x", 5), testCommit("w", 1)},
			expected: []string{"w", "x", "y"},
		},
		{
			desc:     "single commit",
			input:    []model.Commit{testCommit("a", 1)},
			expected: []string{"a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			input := append([]model.Commit(nil), tc.input...)
			order := ApplyOrder(tc.input)

			var names []string
			for _, c := range order {
				names = append(names, c.Hash[:1])
			}
			assert.Equal(t, tc.expected, names)
			assert.Equal(t, input, tc.input, "input must not be modified")
		})
	}
}

func TestRun_EndToEnd(t *testing.T) {
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", "origin/release").Return(nil).Once()
	m.On("CherryPick", mock.Anything).Return(nil)
	m.On("Push", "origin", "HEAD", "release").Return(nil).Once()
	m.On("Checkout", "main").Return(nil).Once()

	commits := newestFirst()
	result, err := NewEngine(m, model.ExecutionOptions{}).Run(testPlan(commits, "origin"))
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Nil(t, result.Fault)
	assert.True(t, result.Restored)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []State{
		StateIdle, StatePreflightChecked, StateBranchSwitched, StateCherryPicking,
		StatePushing, StateRestoring, StateDone,
	}, result.Transitions)

	m.AssertNumberOfCalls(t, "Checkout", 2)
	m.AssertNumberOfCalls(t, "CherryPick", 3)
	m.AssertNumberOfCalls(t, "Push", 1)
	assert.Equal(t, []string{commits[2].Hash, commits[1].Hash, commits[0].Hash}, pickedHashes(m))
	assert.Equal(t, []PushResult{{Remote: "origin", Status: PushPushed}}, result.Pushes)
	m.AssertExpectations(t)
}

func TestRun_ChronologicalOrder(t *testing.T) {
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", mock.Anything).Return(nil)
	m.On("CherryPick", mock.Anything).Return(nil)
	m.On("Push", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mar3, mar1, mar2 := testCommit("c", 3), testCommit("a", 1), testCommit("b", 2)
	result, err := NewEngine(m, model.ExecutionOptions{}).Run(testPlan([]model.Commit{mar3, mar1, mar2}, "origin"))
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []string{mar1.Hash, mar2.Hash, mar3.Hash}, pickedHashes(m))
	assert.Equal(t, hashes(result.Order), pickedHashes(m))
}

func TestRun_Preconditions(t *testing.T) {
	testCases := []struct {
		desc        string
		plan        model.ReleasePlan
		setup       func(m *testutil.MockGitClient)
		expectedErr error
	}{
		{
			desc:        "empty selection",
			plan:        testPlan(nil, "origin"),
			setup:       func(m *testutil.MockGitClient) {},
			expectedErr: model.ErrEmptySelection,
		},
		{
			desc:        "no remotes",
			plan:        testPlan(newestFirst()),
			setup:       func(m *testutil.MockGitClient) {},
			expectedErr: model.ErrNoRemotes,
		},
		{
			desc: "dirty working tree",
			plan: testPlan(newestFirst(), "origin"),
			setup: func(m *testutil.MockGitClient) {
				m.On("HasUncommittedTrackedChanges").Return(true, nil)
			},
			expectedErr: ErrDirtyWorkingTree,
		},
		{
			desc: "target missing",
			plan: testPlan(newestFirst(), "origin"),
			setup: func(m *testutil.MockGitClient) {
				m.On("HasUncommittedTrackedChanges").Return(false, nil)
				m.On("ResolveRef", "origin/release").Return("", false)
			},
			expectedErr: ErrTargetNotFound,
		},
		{
			desc: "remote missing",
			plan: testPlan(newestFirst(), "origin", "mirror"),
			setup: func(m *testutil.MockGitClient) {
				m.On("HasUncommittedTrackedChanges").Return(false, nil)
				m.On("ResolveRef", "origin/release").Return("abc", true)
				m.On("RemoteList").Return([]model.RemoteTarget{{Name: "origin"}}, nil)
			},
			expectedErr: ErrRemoteNotFound,
		},
		{
			desc: "commit missing",
			plan: testPlan(newestFirst(), "origin"),
			setup: func(m *testutil.MockGitClient) {
				m.On("HasUncommittedTrackedChanges").Return(false, nil)
				m.On("ResolveRef", "origin/release").Return("abc", true)
				m.On("ResolveRef", mock.Anything).Return("", false)
				m.On("RemoteList").Return([]model.RemoteTarget{{Name: "origin"}}, nil)
			},
			expectedErr: ErrCommitNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			m := &testutil.MockGitClient{}
			tc.setup(m)

			result, err := NewEngine(m, model.ExecutionOptions{}).Run(tc.plan)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Nil(t, result)

			m.AssertNotCalled(t, "Checkout", mock.Anything)
			m.AssertNotCalled(t, "CherryPick", mock.Anything)
			m.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
			m.AssertNotCalled(t, "BranchCreate", mock.Anything, mock.Anything)
		})
	}
}

func TestRun_ConflictWithoutHandler(t *testing.T) {
	commits := newestFirst()
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", "origin/release").Return(nil).Once()
	m.On("CherryPick", commits[2].Hash).Return(nil)
	m.On("CherryPick", commits[1].Hash).Return(errors.New("conflict"))
	m.On("ConflictedFiles").Return([]string{"app/config.go"}, nil)

	reporter := &recordingReporter{}
	store := NewJournalStore(t.TempDir())
	result, err := NewEngine(m, model.ExecutionOptions{}, WithReporter(reporter), WithJournalStore(store)).
		Run(testPlan(commits, "origin"))
	require.NoError(t, err)

	assert.Equal(t, StateFaulted, result.State)
	require.NotNil(t, result.Fault)
	assert.Equal(t, StateCherryPicking, result.Fault.Stage)
	assert.Equal(t, 1, result.Fault.Index)
	assert.Equal(t, commits[1], result.Fault.Commit)
	assert.Equal(t, []string{"app/config.go"}, result.Fault.ConflictedFiles)
	assert.Equal(t, []model.Commit{commits[2]}, result.Applied)
	assert.False(t, result.Restored, "workspace is left for manual resolution")

	m.AssertNumberOfCalls(t, "Checkout", 1)
	m.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "CherryPickAbort")
	m.AssertNotCalled(t, "CherryPickContinue")

	require.NotEmpty(t, reporter.warnings)
	guidance := reporter.warnings[len(reporter.warnings)-1]
	assert.Contains(t, guidance, "app/config.go")
	assert.Contains(t, guidance, "git cherry-pick --continue")
	assert.Contains(t, guidance, "promote release --recover")

	journal, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, result.RunID, journal.RunID)
	assert.Equal(t, "main", journal.OriginalBranch)
	assert.Equal(t, 1, journal.FailedIndex)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", journal.BaseHead)
	assert.Equal(t, []model.Commit{commits[0]}, journal.Remaining())
}

func TestRun_ConflictResumed(t *testing.T) {
	commits := newestFirst()
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", mock.Anything).Return(nil)
	m.On("CherryPick", commits[1].Hash).Return(errors.New("conflict"))
	m.On("CherryPick", mock.Anything).Return(nil)
	m.On("ConflictedFiles").Return([]string{"a.go"}, nil)
	m.On("CherryPickContinue").Return(errors.New("still conflicted")).Once()
	m.On("CherryPickContinue").Return(nil).Once()
	m.On("Push", "origin", "HEAD", "release").Return(nil)

	handler := &scriptedHandler{choices: []ConflictResolution{ConflictResumed, ConflictResumed}}
	result, err := NewEngine(m, model.ExecutionOptions{}, WithConflictHandler(handler)).Run(testPlan(commits, "origin"))
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Nil(t, result.Fault)
	assert.Equal(t, 2, handler.calls)
	assert.Equal(t, hashes(ApplyOrder(commits)), hashes(result.Applied))
	assert.Contains(t, result.Transitions, StateFaulted)
	m.AssertNumberOfCalls(t, "Push", 1)
}

func TestRun_ConflictAborted(t *testing.T) {
	commits := newestFirst()
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", "origin/release").Return(nil).Once()
	m.On("CherryPick", commits[2].Hash).Return(errors.New("conflict"))
	m.On("ConflictedFiles").Return([]string{"a.go"}, nil)
	m.On("CherryPickAbort").Return(nil).Once()
	m.On("Checkout", "main").Return(nil).Once()

	handler := &scriptedHandler{choices: []ConflictResolution{ConflictAborted}}
	result, err := NewEngine(m, model.ExecutionOptions{}, WithConflictHandler(handler)).Run(testPlan(commits, "origin"))
	require.NoError(t, err)

	assert.Equal(t, StateFaulted, result.State)
	assert.True(t, result.Restored)
	assert.Empty(t, result.Applied)
	m.AssertNumberOfCalls(t, "CherryPick", 1)
	m.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
	m.AssertExpectations(t)
}

func TestRun_PushFailure(t *testing.T) {
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin", "mirror", "backup")
	m.On("Checkout", mock.Anything).Return(nil)
	m.On("CherryPick", mock.Anything).Return(nil)
	m.On("Push", "origin", "HEAD", "release").Return(nil)
	m.On("Push", "mirror", "HEAD", "release").Return(errors.New("rejected"))

	result, err := NewEngine(m, model.ExecutionOptions{}).Run(testPlan(newestFirst(), "origin", "mirror", "backup"))
	require.NoError(t, err)

	assert.Equal(t, StateFaulted, result.State)
	require.NotNil(t, result.Fault)
	assert.Equal(t, StatePushing, result.Fault.Stage)
	assert.Equal(t, "mirror", result.Fault.Remote)
	assert.ErrorContains(t, result.Fault, "push to mirror failed")

	require.Len(t, result.Pushes, 3)
	assert.Equal(t, PushPushed, result.Pushes[0].Status)
	assert.Equal(t, PushFailed, result.Pushes[1].Status)
	assert.Equal(t, PushSkipped, result.Pushes[2].Status)
	assert.Equal(t, []string{"origin"}, result.PushedRemotes())

	assert.True(t, result.Restored, "workspace is restored after a push failure")
	m.AssertNotCalled(t, "Push", "backup", mock.Anything, mock.Anything)
}

func TestRun_RestoreFailureIsWarning(t *testing.T) {
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", "origin/release").Return(nil)
	m.On("Checkout", "main").Return(errors.New("would be overwritten"))
	m.On("CherryPick", mock.Anything).Return(nil)
	m.On("Push", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	reporter := &recordingReporter{}
	result, err := NewEngine(m, model.ExecutionOptions{}, WithReporter(reporter)).Run(testPlan(newestFirst(), "origin"))
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.False(t, result.Restored)
	assert.Error(t, result.RestoreErr)
	require.Len(t, reporter.warnings, 1)
	assert.Contains(t, reporter.warnings[0], "Could not return to main")
}

func TestRun_DryRun(t *testing.T) {
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin", "mirror")

	reporter := &recordingReporter{}
	store := NewJournalStore(t.TempDir())
	plan := testPlan(newestFirst(), "origin", "mirror")
	plan.SaveBranch = "promoted"

	result, err := NewEngine(m, model.ExecutionOptions{DryRun: true}, WithReporter(reporter), WithJournalStore(store)).Run(plan)
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Applied, 3)
	assert.Equal(t, []PushResult{
		{Remote: "origin", Status: PushPlanned},
		{Remote: "mirror", Status: PushPlanned},
	}, result.Pushes)
	assert.Contains(t, reporter.steps, "Would check out origin/release")
	assert.Contains(t, reporter.steps, "Would push HEAD to mirror/release")
	assert.False(t, store.Exists())

	m.AssertCalled(t, "HasUncommittedTrackedChanges")
	m.AssertCalled(t, "RemoteList")
	m.AssertNotCalled(t, "Checkout", mock.Anything)
	m.AssertNotCalled(t, "CherryPick", mock.Anything)
	m.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "BranchCreate", mock.Anything, mock.Anything)
}

func TestRun_SaveBranch(t *testing.T) {
	m := &testutil.MockGitClient{}
	expectPreflight(m, "origin")
	m.On("Checkout", mock.Anything).Return(nil)
	m.On("CherryPick", mock.Anything).Return(nil)
	m.On("BranchCreate", "promoted", "HEAD").Return(nil).Once()
	m.On("Push", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	plan := testPlan(newestFirst(), "origin")
	plan.SaveBranch = "promoted"

	result, err := NewEngine(m, model.ExecutionOptions{}).Run(plan)
	require.NoError(t, err)
	assert.Equal(t, "promoted", result.SavedBranch)
	m.AssertExpectations(t)
}

func TestResume(t *testing.T) {
	const (
		base   = "9999999999999999999999999999999999999999"
		picked = "8888888888888888888888888888888888888888"
	)
	commits := newestFirst()
	order := ApplyOrder(commits)
	journal := newJournal("run-1", testPlan(commits, "origin"), "main", order)
	journal.FailedIndex = 0
	journal.BaseHead = base

	t.Run("continues after the failed commit", func(t *testing.T) {
		store := NewJournalStore(t.TempDir())
		require.NoError(t, store.Save(journal))

		m := &testutil.MockGitClient{}
		m.On("IsCherryPickInProgress").Return(false)
		m.On("HasUncommittedTrackedChanges").Return(false, nil)
		m.On("ResolveRef", "HEAD").Return(picked, true)
		m.On("ResolveRef", "HEAD^").Return(base, true)
		m.On("RemoteList").Return([]model.RemoteTarget{{Name: "origin"}}, nil)
		m.On("CherryPick", mock.Anything).Return(nil)
		m.On("Push", "origin", "HEAD", "release").Return(nil)
		m.On("Checkout", "main").Return(nil)

		result, err := NewEngine(m, model.ExecutionOptions{}, WithJournalStore(store)).Resume(journal)
		require.NoError(t, err)

		assert.Equal(t, StateDone, result.State)
		assert.Equal(t, "run-1", result.RunID)
		assert.Equal(t, []string{order[1].Hash, order[2].Hash}, pickedHashes(m))
		assert.Equal(t, hashes(order), hashes(result.Applied))
		assert.False(t, store.Exists())
	})

	t.Run("refuses while cherry-pick is pending", func(t *testing.T) {
		m := &testutil.MockGitClient{}
		m.On("IsCherryPickInProgress").Return(true)

		_, err := NewEngine(m, model.ExecutionOptions{}).Resume(journal)
		assert.ErrorIs(t, err, ErrCherryPickInProgress)
		m.AssertNotCalled(t, "CherryPick", mock.Anything)
	})

	testCases := []struct {
		desc      string
		head      string
		parent    string
		parentOK  bool
		baseHead  string
		failedIdx int
		expected  error
	}{
		{desc: "pick aborted by hand", head: base, parent: "7777777777777777777777777777777777777777", parentOK: true, baseHead: base, expected: ErrPickNotCompleted},
		{desc: "extra commits on top", head: picked, parent: "7777777777777777777777777777777777777777", parentOK: true, baseHead: base, expected: ErrPickNotCompleted},
		{desc: "no parent", head: picked, baseHead: base, expected: ErrPickNotCompleted},
		{desc: "no base recorded", head: picked, parent: base, parentOK: true, expected: ErrPickNotCompleted},
		{desc: "journal without a stopped pick", head: picked, parent: base, parentOK: true, baseHead: base, failedIdx: -1, expected: ErrNothingToResume},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			j := newJournal("run-3", testPlan(commits, "origin"), "main", order)
			j.FailedIndex = tc.failedIdx
			j.BaseHead = tc.baseHead

			m := &testutil.MockGitClient{}
			m.On("IsCherryPickInProgress").Return(false)
			m.On("HasUncommittedTrackedChanges").Return(false, nil)
			m.On("ResolveRef", "HEAD").Return(tc.head, true)
			m.On("ResolveRef", "HEAD^").Return(tc.parent, tc.parentOK)
			m.On("RemoteList").Return([]model.RemoteTarget{{Name: "origin"}}, nil)

			_, err := NewEngine(m, model.ExecutionOptions{}).Resume(j)
			assert.ErrorIs(t, err, tc.expected)
			m.AssertNotCalled(t, "CherryPick", mock.Anything)
			m.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAbandon(t *testing.T) {
	commits := newestFirst()
	journal := newJournal("run-2", testPlan(commits, "origin"), "feature/x", ApplyOrder(commits))
	journal.FailedIndex = 1

	store := NewJournalStore(t.TempDir())
	require.NoError(t, store.Save(journal))

	m := &testutil.MockGitClient{}
	m.On("IsCherryPickInProgress").Return(true)
	m.On("CherryPickAbort").Return(nil).Once()
	m.On("Checkout", "feature/x").Return(nil).Once()

	result, err := NewEngine(m, model.ExecutionOptions{}, WithJournalStore(store)).Abandon(journal)
	require.NoError(t, err)

	assert.Equal(t, StateFaulted, result.State)
	assert.True(t, result.Restored)
	assert.False(t, store.Exists())
	m.AssertExpectations(t)
}
