package installpoll

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const continueHistoryLimit = 10000

// Workflow polls one job runner execution until it is terminal or the
// deadline passes. A deadline is reported as Result.TimedOut, not an error.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	res := Result{ExecutionID: strings.TrimSpace(in.ExecutionID), Polls: in.Polls}
	if res.ExecutionID == "" {
		return res, fmt.Errorf("installpoll: missing execution_id")
	}
	interval := in.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if in.Deadline.IsZero() {
		timeout := in.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Minute
		}
		in.Deadline = workflow.Now(ctx).Add(timeout)
	}
	maxErrors := in.MaxErrors
	if maxErrors < 0 {
		maxErrors = 0
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        interval,
			BackoffCoefficient:     1.0,
			MaximumAttempts:        int32(maxErrors + 1),
			NonRetryableErrorTypes: []string{errTypeLookupFailed},
		},
	})

	for {
		var out PollResult
		if err := workflow.ExecuteActivity(ctx, ActivityPoll, res.ExecutionID).Get(ctx, &out); err != nil {
			return res, err
		}
		res.Polls++
		res.Status = out.Status
		if out.Terminal {
			return res, nil
		}

		remaining := in.Deadline.Sub(workflow.Now(ctx))
		if remaining <= 0 {
			res.TimedOut = true
			return res, nil
		}
		if remaining < interval {
			if err := workflow.Sleep(ctx, remaining); err != nil {
				return res, err
			}
			res.TimedOut = true
			return res, nil
		}
		if err := workflow.Sleep(ctx, interval); err != nil {
			return res, err
		}

		if info := workflow.GetInfo(ctx); info != nil && info.GetCurrentHistoryLength() >= continueHistoryLimit {
			in.Polls = res.Polls
			return res, workflow.NewContinueAsNewError(ctx, WorkflowName, in)
		}
	}
}
