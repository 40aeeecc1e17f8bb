package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/clients/ticketing"
	"github.com/yungbote/installdesk-backend/internal/data/repos"
	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

// Symbolic ticket states understood by the ticket mediation service.
const (
	TicketStateInProgress = "in progress"
	TicketStateCancelled  = "cancelled"
	TicketStateClosed     = "closed"
)

// Reporter receives progress lines while a long command runs.
type Reporter func(msg string)

type InstallOutcome struct {
	Request         *types.InstallRequest
	ExecutionID     string
	ExecutionStatus string
}

type RequestView struct {
	Request *types.InstallRequest `json:"request"`
	Events  []*types.RequestEvent `json:"events"`
}

// InstallWorkflowService drives a request through
// Requested -> Approved|Rejected and Approved -> Completed. The ticket is
// always updated before the local status.
type InstallWorkflowService interface {
	Approve(ctx context.Context, id uint) (*types.InstallRequest, error)
	Reject(ctx context.Context, id uint) (*types.InstallRequest, error)
	Install(ctx context.Context, id uint, report Reporter) (*InstallOutcome, error)
	Status(ctx context.Context, id uint) (*RequestView, error)
}

type installWorkflowService struct {
	db       *gorm.DB
	log      *logger.Logger
	requests repos.InstallRequestRepo
	events   repos.RequestEventRepo
	tickets  ticketing.Client
	runner   rundeck.Client
	poller   ExecutionPoller
	locks    Locker
	jobID    string
}

func NewInstallWorkflowService(
	db *gorm.DB,
	baseLog *logger.Logger,
	requests repos.InstallRequestRepo,
	events repos.RequestEventRepo,
	tickets ticketing.Client,
	runner rundeck.Client,
	poller ExecutionPoller,
	locks Locker,
	jobID string,
) InstallWorkflowService {
	if locks == nil {
		locks = NewMemoryLocker()
	}
	return &installWorkflowService{
		db:       db,
		log:      baseLog.With("service", "InstallWorkflowService"),
		requests: requests,
		events:   events,
		tickets:  tickets,
		runner:   runner,
		poller:   poller,
		locks:    locks,
		jobID:    jobID,
	}
}

func (s *installWorkflowService) Approve(ctx context.Context, id uint) (req *types.InstallRequest, err error) {
	defer func() { observability.Current().IncCommand("approve", ResultLabel(err)) }()
	return s.decide(ctx, id, types.StatusApproved, TicketStateInProgress, types.EventApproved)
}

func (s *installWorkflowService) Reject(ctx context.Context, id uint) (req *types.InstallRequest, err error) {
	defer func() { observability.Current().IncCommand("reject", ResultLabel(err)) }()
	return s.decide(ctx, id, types.StatusRejected, TicketStateCancelled, types.EventRejected)
}

// decide handles the two supervisor decisions on a Requested row; they differ
// only in target status and ticket state.
func (s *installWorkflowService) decide(ctx context.Context, id uint, to types.RequestStatus, ticketState string, kind types.EventKind) (*types.InstallRequest, error) {
	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := req.Status
	if err := checkCommand(req, to); err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, req.TicketID, map[string]any{"state": ticketState}); err != nil {
		s.log.Warn("Ticket update failed", "request_id", id, "ticket_id", req.TicketID, "state", ticketState, "error", err)
		return nil, fmt.Errorf("%w: ticket update: %w", ErrUpstreamUnavailable, err)
	}

	if err := s.transition(ctx, req, to, &types.RequestEvent{Kind: kind}); err != nil {
		return nil, err
	}
	s.log.Info("Request decided", "request_id", id, "from", from, "to", to)
	return req, nil
}

func (s *installWorkflowService) Install(ctx context.Context, id uint, report Reporter) (out *InstallOutcome, err error) {
	defer func() { observability.Current().IncCommand("install", ResultLabel(err)) }()
	if report == nil {
		report = func(string) {}
	}
	// A dropped inbound connection must not abandon a running install; the
	// poll timeout bounds it instead.
	ctx = context.WithoutCancel(ctx)

	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkCommand(req, types.StatusCompleted); err != nil {
		return nil, err
	}

	started := time.Now()
	exec, err := s.runner.Trigger(ctx, s.jobID, map[string]string{
		"software": req.Software,
		"version":  req.Version,
	})
	if err != nil {
		s.audit(ctx, req, types.EventInstallFailed, "", map[string]any{"stage": "trigger", "error": err.Error()})
		return nil, fmt.Errorf("%w: trigger job: %w", ErrUpstreamUnavailable, err)
	}
	execID := exec.ID.String()
	out = &InstallOutcome{Request: req, ExecutionID: execID, ExecutionStatus: exec.Status}
	s.audit(ctx, req, types.EventInstallStarted, execID, map[string]any{"job_id": s.jobID})
	s.log.Info("Installation started", "request_id", id, "execution_id", execID)
	report(fmt.Sprintf("Installation started for request %d (execution %s).", id, execID))

	final, err := s.poller.Await(ctx, execID)
	if err != nil {
		kind := types.EventInstallFailed
		if errors.Is(err, ErrPollTimeout) {
			kind = types.EventInstallTimedOut
		}
		s.audit(ctx, req, kind, execID, map[string]any{"stage": "poll", "error": err.Error()})
		observability.Current().ObserveInstall(ResultLabel(err), time.Since(started))
		return out, err
	}
	out.ExecutionStatus = final.Status
	if !final.Succeeded() {
		s.audit(ctx, req, types.EventInstallFailed, execID, map[string]any{"stage": "execution", "status": final.Status})
		observability.Current().ObserveInstall("execution_failed", time.Since(started))
		return out, fmt.Errorf("%w: execution %s ended %s", ErrExecutionFailed, execID, final.Status)
	}
	observability.Current().ObserveInstall("succeeded", time.Since(started))

	closeFields := map[string]any{
		"state":       TicketStateClosed,
		"close_notes": fmt.Sprintf("Installation of %s %s completed", req.Software, req.Version),
	}
	if err := s.tickets.Update(ctx, req.TicketID, closeFields); err != nil {
		s.audit(ctx, req, types.EventInstallFailed, execID, map[string]any{"stage": "ticket_close", "error": err.Error()})
		return out, fmt.Errorf("%w: ticket close: %w", ErrUpstreamUnavailable, err)
	}

	if err := s.transition(ctx, req, types.StatusCompleted, &types.RequestEvent{
		Kind:        types.EventInstallCompleted,
		ExecutionID: execID,
	}); err != nil {
		return out, err
	}
	s.log.Info("Installation completed", "request_id", id, "execution_id", execID, "took", time.Since(started).String())
	return out, nil
}

func (s *installWorkflowService) Status(ctx context.Context, id uint) (*RequestView, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByRequest(dbctx.Context{Ctx: ctx}, id, 5)
	if err != nil {
		return nil, fmt.Errorf("list request events: %w", err)
	}
	return &RequestView{Request: req, Events: events}, nil
}

func (s *installWorkflowService) lock(ctx context.Context, id uint) (func(), error) {
	release, ok, err := s.locks.TryLock(ctx, fmt.Sprintf("request:%d", id))
	if err != nil {
		return nil, fmt.Errorf("acquire request lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: request %d", ErrBusy, id)
	}
	return release, nil
}

func (s *installWorkflowService) load(ctx context.Context, id uint) (*types.InstallRequest, error) {
	req, err := s.requests.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load request %d: %w", id, err)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return req, nil
}

// checkCommand validates that req may move to target before any external
// call is made.
func checkCommand(req *types.InstallRequest, target types.RequestStatus) error {
	if req.Status.IsTerminal() {
		return fmt.Errorf("%w: request %d is %s", ErrTerminalState, req.ID, req.Status)
	}
	if !types.CanTransition(req.Status, target) {
		return fmt.Errorf("%w: request %d is %s", ErrInvalidTransition, req.ID, req.Status)
	}
	return nil
}

var errStatusMoved = errors.New("status changed concurrently")

// transition compare-and-sets the status and appends the audit row in one
// transaction. On success req reflects the new status.
func (s *installWorkflowService) transition(ctx context.Context, req *types.InstallRequest, to types.RequestStatus, ev *types.RequestEvent) error {
	from := req.Status
	ev.RequestID = req.ID
	ev.FromStatus = from
	ev.ToStatus = to
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		ok, err := s.requests.UpdateStatusIfCurrent(dbc, req.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return errStatusMoved
		}
		_, err = s.events.Append(dbc, ev)
		return err
	})
	if errors.Is(err, errStatusMoved) {
		current, lErr := s.load(ctx, req.ID)
		if lErr != nil {
			return lErr
		}
		if current.Status.IsTerminal() {
			return fmt.Errorf("%w: request %d is %s", ErrTerminalState, req.ID, current.Status)
		}
		return fmt.Errorf("%w: request %d is %s", ErrInvalidTransition, req.ID, current.Status)
	}
	if err != nil {
		return fmt.Errorf("update request %d status: %w", req.ID, err)
	}
	req.Status = to
	return nil
}

func (s *installWorkflowService) inTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if s.db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// audit records an event that does not change status. Failures are logged
// only; the command outcome has already been decided.
func (s *installWorkflowService) audit(ctx context.Context, req *types.InstallRequest, kind types.EventKind, execID string, detail map[string]any) {
	raw, err := json.Marshal(detail)
	if err != nil {
		raw = []byte("{}")
	}
	_, err = s.events.Append(dbctx.Context{Ctx: ctx}, &types.RequestEvent{
		RequestID:   req.ID,
		Kind:        kind,
		FromStatus:  req.Status,
		ToStatus:    req.Status,
		ExecutionID: execID,
		Detail:      raw,
	})
	if err != nil {
		s.log.Warn("Audit append failed", "request_id", req.ID, "kind", kind, "error", err)
	}
}
