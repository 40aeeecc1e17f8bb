package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/clients/ticketing"
	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
)

func TestApproveMovesRequestToApproved(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusRequested)

	got, err := f.svc.Approve(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, got.Status)
	assert.Equal(t, types.StatusApproved, f.reload(req.ID).Status)

	require.Len(t, f.tickets.updates, 1)
	assert.Equal(t, req.TicketID, f.tickets.updates[0].TicketID)
	assert.Equal(t, map[string]any{"state": TicketStateInProgress}, f.tickets.updates[0].Fields)
	assert.Equal(t, []types.EventKind{types.EventApproved}, f.eventKinds(t, req.ID))
}

func TestCommandOnMissingRequestChangesNothing(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	existing := f.seed(types.StatusRequested)

	_, err := f.svc.Approve(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Reject(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Install(context.Background(), 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, f.tickets.updateCount())
	triggers, polls := f.runner.counts()
	assert.Zero(t, triggers)
	assert.Zero(t, polls)
	rows, err := f.requests.List(dbctx.Context{Ctx: context.Background()}, "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.StatusRequested, rows[0].Status)
	assert.Equal(t, existing.ID, rows[0].ID)
}

func TestApproveTicketFailureKeepsStatus(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusRequested)
	f.tickets.updateErr = &ticketing.HTTPError{StatusCode: http.StatusNotFound, Body: "gone"}

	_, err := f.svc.Approve(context.Background(), req.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, ticketing.ErrNotFound)
	assert.Equal(t, types.StatusRequested, f.reload(req.ID).Status)
	assert.Empty(t, f.eventKinds(t, req.ID))
}

func TestRejectTwiceIsTerminal(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusRequested)

	_, err := f.svc.Reject(context.Background(), req.ID)
	require.NoError(t, err)
	_, err = f.svc.Reject(context.Background(), req.ID)
	assert.ErrorIs(t, err, ErrTerminalState)

	assert.Equal(t, 1, f.tickets.updateCount())
	assert.Equal(t, map[string]any{"state": TicketStateCancelled}, f.tickets.updates[0].Fields)
	assert.Equal(t, types.StatusRejected, f.reload(req.ID).Status)
}

func TestInstallOnRequestedTriggersNothing(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusRequested)

	_, err := f.svc.Install(context.Background(), req.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	triggers, _ := f.runner.counts()
	assert.Zero(t, triggers)
	assert.Zero(t, f.tickets.updateCount())
	assert.Equal(t, types.StatusRequested, f.reload(req.ID).Status)
}

func TestApproveOrRejectOnApprovedIsInvalid(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusApproved)

	_, err := f.svc.Approve(context.Background(), req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Reject(context.Background(), req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, f.tickets.updateCount())
}

func TestInstallRunsToCompletion(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusApproved)
	f.runner.statuses = []string{rundeck.StatusQueued, rundeck.StatusRunning, rundeck.StatusSucceeded}

	var statusAtClose types.RequestStatus
	f.tickets.onUpdate = func(ticketID string, fields map[string]any) {
		if fields["state"] == TicketStateClosed {
			statusAtClose = f.reload(req.ID).Status
		}
	}
	var progress []string
	out, err := f.svc.Install(context.Background(), req.ID, func(msg string) { progress = append(progress, msg) })
	require.NoError(t, err)

	assert.Equal(t, "42", out.ExecutionID)
	assert.Equal(t, rundeck.StatusSucceeded, out.ExecutionStatus)
	assert.Equal(t, types.StatusCompleted, out.Request.Status)
	assert.Equal(t, types.StatusCompleted, f.reload(req.ID).Status)
	assert.Equal(t, types.StatusApproved, statusAtClose, "ticket must be closed before the row completes")

	triggers, polls := f.runner.counts()
	assert.Equal(t, 1, triggers)
	assert.Equal(t, 3, polls)
	assert.Equal(t, map[string]string{"software": "vscode", "version": "1.0"}, f.runner.triggers[0])

	require.Equal(t, 1, f.tickets.updateCount())
	assert.Equal(t, map[string]any{
		"state":       TicketStateClosed,
		"close_notes": "Installation of vscode 1.0 completed",
	}, f.tickets.updates[0].Fields)

	assert.Equal(t, []string{
		"runner:trigger",
		"runner:poll:queued",
		"runner:poll:running",
		"runner:poll:succeeded",
		"ticket:update:closed",
	}, f.rec.list())
	require.Len(t, progress, 1)
	assert.Contains(t, progress[0], "execution 42")
	assert.Equal(t, []types.EventKind{types.EventInstallStarted, types.EventInstallCompleted}, f.eventKinds(t, req.ID))
}

func TestInstallSurvivesCallerCancellation(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusApproved)
	f.runner.statuses = []string{rundeck.StatusRunning, rundeck.StatusSucceeded}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.Install(ctx, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, f.reload(req.ID).Status)
}

func TestInstallFailedExecutionStaysApproved(t *testing.T) {
	for _, status := range []string{rundeck.StatusFailed, rundeck.StatusAborted, rundeck.StatusTimedOut, rundeck.StatusFailedWithRetry} {
		t.Run(status, func(t *testing.T) {
			f := newEngineFixture(t, PollConfig{})
			req := f.seed(types.StatusApproved)
			f.runner.statuses = []string{rundeck.StatusRunning, status}

			out, err := f.svc.Install(context.Background(), req.ID, nil)
			assert.ErrorIs(t, err, ErrExecutionFailed)
			require.NotNil(t, out)
			assert.Equal(t, status, out.ExecutionStatus)
			assert.Zero(t, f.tickets.updateCount(), "ticket stays open")
			assert.Equal(t, types.StatusApproved, f.reload(req.ID).Status)
			assert.Equal(t, []types.EventKind{types.EventInstallStarted, types.EventInstallFailed}, f.eventKinds(t, req.ID))
		})
	}
}

func TestInstallPollTimeout(t *testing.T) {
	f := newEngineFixture(t, PollConfig{Interval: 2 * time.Millisecond, Timeout: 30 * time.Millisecond})
	req := f.seed(types.StatusApproved)
	f.runner.statuses = []string{rundeck.StatusRunning}

	_, err := f.svc.Install(context.Background(), req.ID, nil)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Zero(t, f.tickets.updateCount())
	assert.Equal(t, types.StatusApproved, f.reload(req.ID).Status)
	assert.Equal(t, []types.EventKind{types.EventInstallStarted, types.EventInstallTimedOut}, f.eventKinds(t, req.ID))
}

func TestInstallTriggerFailure(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusApproved)
	f.runner.triggerErr = &rundeck.HTTPError{StatusCode: http.StatusInternalServerError}

	_, err := f.svc.Install(context.Background(), req.ID, nil)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	_, polls := f.runner.counts()
	assert.Zero(t, polls)
	assert.Zero(t, f.tickets.updateCount())
	assert.Equal(t, types.StatusApproved, f.reload(req.ID).Status)
}

func TestInstallTicketCloseFailureStaysApproved(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusApproved)
	f.runner.statuses = []string{rundeck.StatusSucceeded}
	f.tickets.updateErr = errors.New("connection refused")

	_, err := f.svc.Install(context.Background(), req.ID, nil)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, types.StatusApproved, f.reload(req.ID).Status)
}

func TestBusyRequestIsRefused(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusRequested)

	release, ok, err := f.locks.TryLock(context.Background(), "request:1")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Approve(context.Background(), req.ID)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, f.tickets.updateCount())

	release()
	_, err = f.svc.Approve(context.Background(), req.ID)
	require.NoError(t, err)
}

func TestTransitionClosure(t *testing.T) {
	allowed := map[types.RequestStatus][]types.RequestStatus{
		types.StatusRequested: {types.StatusRequested, types.StatusApproved, types.StatusRejected},
		types.StatusApproved:  {types.StatusApproved, types.StatusCompleted},
		types.StatusRejected:  {types.StatusRejected},
		types.StatusCompleted: {types.StatusCompleted},
	}
	commands := map[string]func(InstallWorkflowService, uint) error{
		"approve": func(s InstallWorkflowService, id uint) error { _, err := s.Approve(context.Background(), id); return err },
		"reject":  func(s InstallWorkflowService, id uint) error { _, err := s.Reject(context.Background(), id); return err },
		"install": func(s InstallWorkflowService, id uint) error { _, err := s.Install(context.Background(), id, nil); return err },
	}
	for from, targets := range allowed {
		for name, run := range commands {
			t.Run(string(from)+"/"+name, func(t *testing.T) {
				f := newEngineFixture(t, PollConfig{})
				f.runner.statuses = []string{rundeck.StatusSucceeded}
				req := f.seed(from)
				err := run(f.svc, req.ID)
				after := f.reload(req.ID).Status
				assert.Contains(t, targets, after)
				if from.IsTerminal() {
					assert.ErrorIs(t, err, ErrTerminalState)
				}
			})
		}
	}
}

func TestStatusShowsLatestEvents(t *testing.T) {
	f := newEngineFixture(t, PollConfig{})
	req := f.seed(types.StatusRequested)
	_, err := f.svc.Approve(context.Background(), req.ID)
	require.NoError(t, err)

	view, err := f.svc.Status(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApproved, view.Request.Status)
	require.Len(t, view.Events, 1)
	assert.Equal(t, types.EventApproved, view.Events[0].Kind)
	assert.Equal(t, types.StatusRequested, view.Events[0].FromStatus)

	_, err = f.svc.Status(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
