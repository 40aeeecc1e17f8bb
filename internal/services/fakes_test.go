package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/clients/ticketing"
	"github.com/yungbote/installdesk-backend/internal/data/repos"
	"github.com/yungbote/installdesk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
)

// recorder keeps a global order of external calls across fakes.
type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) add(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

type ticketUpdate struct {
	TicketID string
	Fields   map[string]any
}

type fakeTickets struct {
	mu        sync.Mutex
	rec       *recorder
	creates   []ticketing.CreateRequest
	updates   []ticketUpdate
	createErr error
	updateErr error
	onUpdate  func(ticketID string, fields map[string]any)
	next      int
}

func (f *fakeTickets) Create(_ context.Context, req ticketing.CreateRequest) (*ticketing.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	if f.rec != nil {
		f.rec.add("ticket:create")
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.next++
	return &ticketing.Ticket{
		TicketID:     fmt.Sprintf("sys-%d", f.next),
		TicketNumber: fmt.Sprintf("INC%07d", f.next),
	}, nil
}

func (f *fakeTickets) Update(_ context.Context, ticketID string, fields map[string]any) error {
	f.mu.Lock()
	f.updates = append(f.updates, ticketUpdate{TicketID: ticketID, Fields: fields})
	hook := f.onUpdate
	err := f.updateErr
	f.mu.Unlock()
	if f.rec != nil {
		f.rec.add(fmt.Sprintf("ticket:update:%v", fields["state"]))
	}
	if hook != nil {
		hook(ticketID, fields)
	}
	return err
}

func (f *fakeTickets) Get(_ context.Context, ticketID string) (map[string]any, error) {
	return map[string]any{"sys_id": ticketID}, nil
}

func (f *fakeTickets) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type fakeRunner struct {
	mu         sync.Mutex
	rec        *recorder
	triggers   []map[string]string
	triggerErr error
	// statuses are returned in order; the last one repeats.
	statuses []string
	pollErrs []error
	polls    int
}

func (f *fakeRunner) Trigger(_ context.Context, jobID string, options map[string]string) (*rundeck.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, options)
	if f.rec != nil {
		f.rec.add("runner:trigger")
	}
	if f.triggerErr != nil {
		return nil, f.triggerErr
	}
	return &rundeck.Execution{ID: "42", Status: rundeck.StatusRunning}, nil
}

func (f *fakeRunner) Execution(_ context.Context, executionID string) (*rundeck.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.polls
	f.polls++
	if i < len(f.pollErrs) && f.pollErrs[i] != nil {
		if f.rec != nil {
			f.rec.add("runner:poll:error")
		}
		return nil, f.pollErrs[i]
	}
	status := rundeck.StatusRunning
	if len(f.statuses) > 0 {
		if i < len(f.statuses) {
			status = f.statuses[i]
		} else {
			status = f.statuses[len(f.statuses)-1]
		}
	}
	if f.rec != nil {
		f.rec.add("runner:poll:" + status)
	}
	return &rundeck.Execution{ID: rundeck.ExecutionID(executionID), Status: status}, nil
}

func (f *fakeRunner) counts() (triggers, polls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triggers), f.polls
}

type engineFixture struct {
	svc      InstallWorkflowService
	requests repos.InstallRequestRepo
	events   repos.RequestEventRepo
	tickets  *fakeTickets
	runner   *fakeRunner
	locks    Locker
	rec      *recorder
	seed     func(status types.RequestStatus) *types.InstallRequest
	reload   func(id uint) *types.InstallRequest
}

func newEngineFixture(t *testing.T, poll PollConfig) *engineFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rec := &recorder{}
	f := &engineFixture{
		requests: repos.NewInstallRequestRepo(db, log),
		events:   repos.NewRequestEventRepo(db, log),
		tickets:  &fakeTickets{rec: rec},
		runner:   &fakeRunner{rec: rec},
		locks:    NewMemoryLocker(),
		rec:      rec,
	}
	if poll.Interval == 0 {
		poll.Interval = time.Millisecond
	}
	if poll.Timeout == 0 {
		poll.Timeout = 5 * time.Second
	}
	poller := NewLocalPoller(log, f.runner, poll)
	f.svc = NewInstallWorkflowService(db, log, f.requests, f.events, f.tickets, f.runner, poller, f.locks, "job-1")
	f.seed = func(status types.RequestStatus) *types.InstallRequest {
		return testutil.SeedInstallRequest(t, context.Background(), db, "vscode", status)
	}
	f.reload = func(id uint) *types.InstallRequest {
		req, err := f.requests.GetByID(dbctx.Context{Ctx: context.Background()}, id)
		require.NoError(t, err)
		require.NotNil(t, req)
		return req
	}
	return f
}

func (f *engineFixture) eventKinds(t *testing.T, id uint) []types.EventKind {
	t.Helper()
	evs, err := f.events.ListByRequest(dbctx.Context{Ctx: context.Background()}, id, 0)
	require.NoError(t, err)
	out := make([]types.EventKind, 0, len(evs))
	for i := len(evs) - 1; i >= 0; i-- {
		out = append(out, evs[i].Kind)
	}
	return out
}
