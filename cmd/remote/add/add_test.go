package add

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/testutil"
)

func TestAdd(t *testing.T) {
	existing := []model.RemoteTarget{{Name: "origin", FetchURL: "git@example.com:app.git"}}

	testCases := []struct {
		desc        string
		name        string
		dryRun      bool
		expectAdd   bool
		expectError error
	}{
		{
			desc:      "adds a new remote",
			name:      "mirror",
			expectAdd: true,
		},
		{
			desc:   "dry run does not add",
			name:   "mirror",
			dryRun: true,
		},
		{
			desc:        "existing name is rejected",
			name:        "origin",
			expectError: ErrRemoteExists,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			m := &testutil.MockGitClient{}
			m.On("RemoteList").Return(existing, nil)
			if tc.expectAdd {
				m.On("RemoteAdd", tc.name, "git@mirror.example.com:app.git").Return(nil)
			}

			c := &Command{Globals: &common.Globals{DryRun: tc.dryRun}}
			err := c.Run(context.Background(), m, tc.name, "git@mirror.example.com:app.git")

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				m.AssertNotCalled(t, "RemoteAdd", tc.name, "git@mirror.example.com:app.git")
				return
			}
			require.NoError(t, err)
			if !tc.expectAdd {
				m.AssertNotCalled(t, "RemoteAdd", tc.name, "git@mirror.example.com:app.git")
			}
			m.AssertExpectations(t)
		})
	}
}
