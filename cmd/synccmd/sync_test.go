package synccmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/config"
	"github.com/bjulian5/promote/internal/history"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/remotesync"
	"github.com/bjulian5/promote/internal/testutil"
)

func TestRequest(t *testing.T) {
	cfg := config.Defaults()
	cfg.Sync.Source = "origin"
	cfg.Sync.Target = "mirror"

	testCases := []struct {
		desc    string
		command Command
		expect  remotesync.Request
	}{
		{
			desc:    "config supplies everything",
			command: Command{},
			expect:  remotesync.Request{SourceRemote: "origin", TargetRemote: "mirror", Branch: "main"},
		},
		{
			desc:    "flags override config",
			command: Command{Source: "backup", Target: "origin", Branch: "develop"},
			expect:  remotesync.Request{SourceRemote: "backup", TargetRemote: "origin", Branch: "develop"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			m := &testutil.MockGitClient{}
			tc.command.Globals = &common.Globals{Config: cfg}

			req, err := tc.command.request(m)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, req)
			m.AssertNotCalled(t, "RemoteList")
		})
	}
}

func TestRequest_MissingRemotesWithYes(t *testing.T) {
	m := &testutil.MockGitClient{}
	c := Command{Globals: &common.Globals{Config: config.Defaults(), Yes: true}}

	req, err := c.request(m)
	require.NoError(t, err)
	// The workflow reports the missing remotes
	assert.Empty(t, req.SourceRemote)
	assert.Equal(t, "main", req.Branch)
}

func TestHistoryRun(t *testing.T) {
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	req := remotesync.Request{SourceRemote: "origin", TargetRemote: "mirror", Branch: "main"}
	commits := []model.Commit{
		model.NewCommit("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "Add login", started),
	}

	testCases := []struct {
		desc          string
		result        *remotesync.Result
		runErr        error
		expectOutcome string
		expectDetail  string
		expectDryRun  bool
	}{
		{
			desc:          "synced",
			result:        &remotesync.Result{RunID: "s1", Outcome: remotesync.OutcomeSynced, Plan: model.SyncPlan{Commits: commits}},
			expectOutcome: "synced",
		},
		{
			desc:          "declined gate",
			result:        &remotesync.Result{RunID: "s2", Outcome: remotesync.OutcomeCancelled, CancelledAt: remotesync.StagePushDecision},
			expectOutcome: "cancelled",
			expectDetail:  "declined at " + remotesync.StagePushDecision.String(),
		},
		{
			desc:          "push rejected",
			result:        &remotesync.Result{RunID: "s3", Plan: model.SyncPlan{Commits: commits}},
			runErr:        errors.New("failed to push to mirror: rejected"),
			expectOutcome: "failed",
			expectDetail:  "failed to push to mirror: rejected",
		},
		{
			desc:          "dry run",
			result:        &remotesync.Result{RunID: "s4", Outcome: remotesync.OutcomeDryRun},
			expectOutcome: "dry-run",
			expectDryRun:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			run := historyRun("/src/app", req, tc.result, tc.runErr, started)

			assert.Equal(t, tc.result.RunID, run.ID)
			assert.Equal(t, history.KindSync, run.Kind)
			assert.Equal(t, "origin", run.Source)
			assert.Equal(t, "mirror", run.Target)
			assert.Equal(t, "main", run.Branch)
			assert.Equal(t, tc.expectOutcome, run.Outcome)
			assert.Equal(t, tc.expectDetail, run.Detail)
			assert.Equal(t, tc.expectDryRun, run.DryRun)
			assert.Len(t, run.Commits, len(tc.result.Plan.Commits))
		})
	}
}
