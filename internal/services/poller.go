package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/httpx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

// ExecutionPoller waits for a job runner execution to reach a terminal
// status. It returns ErrPollTimeout when the deadline passes first.
type ExecutionPoller interface {
	Await(ctx context.Context, executionID string) (*rundeck.Execution, error)
}

type PollConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	MaxErrors int
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Minute
	}
	if c.MaxErrors < 0 {
		c.MaxErrors = 0
	}
	return c
}

type localPoller struct {
	log    *logger.Logger
	runner rundeck.Client
	cfg    PollConfig
}

// NewLocalPoller polls in-process on a ticker: one status call right away,
// then one per interval until terminal or timeout.
func NewLocalPoller(baseLog *logger.Logger, runner rundeck.Client, cfg PollConfig) ExecutionPoller {
	return &localPoller{
		log:    baseLog.With("service", "LocalExecutionPoller"),
		runner: runner,
		cfg:    cfg.withDefaults(),
	}
}

func (p *localPoller) Await(ctx context.Context, executionID string) (*rundeck.Execution, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	metrics := observability.Current()
	consecutiveErrs := 0
	for attempt := 1; ; attempt++ {
		exec, err := p.runner.Execution(ctx, executionID)
		switch {
		case err == nil:
			consecutiveErrs = 0
			metrics.IncPollAttempt("local", exec.Status)
			p.log.Debug("Execution polled", "execution_id", executionID, "attempt", attempt, "status", exec.Status)
			if exec.IsTerminal() {
				return exec, nil
			}
		case ctx.Err() != nil:
			// Deadline hit mid-request; handled below.
		default:
			metrics.IncPollAttempt("local", "error")
			if !httpx.IsTransient(err) {
				return nil, fmt.Errorf("%w: poll execution %s: %w", ErrUpstreamUnavailable, executionID, err)
			}
			consecutiveErrs++
			p.log.Warn("Execution poll failed", "execution_id", executionID, "attempt", attempt, "consecutive", consecutiveErrs, "error", err)
			if consecutiveErrs > p.cfg.MaxErrors {
				return nil, fmt.Errorf("%w: poll execution %s: %w", ErrUpstreamUnavailable, executionID, err)
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: execution %s after %s", ErrPollTimeout, executionID, p.cfg.Timeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
