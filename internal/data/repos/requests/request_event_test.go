package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/installdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
)

func TestRequestEventRepoAppendAndList(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewRequestEventRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	req := testutil.SeedInstallRequest(t, ctx, db, "vscode", types.StatusApproved)

	_, err := repo.Append(dbc, &types.RequestEvent{
		RequestID: req.ID, Kind: types.EventApproved,
		FromStatus: types.StatusRequested, ToStatus: types.StatusApproved,
	})
	require.NoError(t, err)
	started, err := repo.Append(dbc, &types.RequestEvent{
		RequestID: req.ID, Kind: types.EventInstallStarted, ExecutionID: "42",
		Detail: []byte(`{"software":"vscode"}`),
	})
	require.NoError(t, err)
	assert.NotZero(t, started.ID)
	assert.False(t, started.CreatedAt.IsZero())

	events, err := repo.ListByRequest(dbc, req.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, types.EventInstallStarted, events[0].Kind)
	assert.Equal(t, "42", events[0].ExecutionID)
	assert.Equal(t, types.EventApproved, events[1].Kind)

	latest, err := repo.ListByRequest(dbc, req.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, started.ID, latest[0].ID)

	other, err := repo.ListByRequest(dbc, req.ID+1, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRequestEventRepoRejectsIncompleteEvent(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRequestEventRepo(db, testutil.Logger(t))
	_, err := repo.Append(dbctx.Context{Ctx: context.Background()}, &types.RequestEvent{Kind: types.EventCreated})
	require.Error(t, err)
}
