package installpoll

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
	"github.com/yungbote/installdesk-backend/internal/services"
)

type poller struct {
	log       *logger.Logger
	tc        temporalsdkclient.Client
	taskQueue string
	cfg       services.PollConfig
}

// NewPoller runs each wait as an install_poll workflow and blocks on its
// result, so a poll survives a restart of the worker.
func NewPoller(baseLog *logger.Logger, tc temporalsdkclient.Client, taskQueue string, cfg services.PollConfig) services.ExecutionPoller {
	return &poller{
		log:       baseLog.With("service", "TemporalExecutionPoller"),
		tc:        tc,
		taskQueue: taskQueue,
		cfg:       cfg,
	}
}

func (p *poller) Await(ctx context.Context, executionID string) (*rundeck.Execution, error) {
	if p == nil || p.tc == nil {
		return nil, fmt.Errorf("%w: temporal client not configured", services.ErrUpstreamUnavailable)
	}
	run, err := p.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        WorkflowID(executionID),
		TaskQueue: p.taskQueue,
	}, WorkflowName, Input{
		ExecutionID: executionID,
		Interval:    p.cfg.Interval,
		Timeout:     p.cfg.Timeout,
		MaxErrors:   p.cfg.MaxErrors,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: start poll workflow: %w", services.ErrUpstreamUnavailable, err)
	}
	p.log.Info("Poll workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "execution_id", executionID)

	var res Result
	if err := run.Get(ctx, &res); err != nil {
		return nil, fmt.Errorf("%w: poll workflow: %w", services.ErrUpstreamUnavailable, err)
	}
	if res.TimedOut {
		return nil, fmt.Errorf("%w: execution %s after %d polls", services.ErrPollTimeout, executionID, res.Polls)
	}
	return &rundeck.Execution{ID: rundeck.ExecutionID(executionID), Status: res.Status}, nil
}
