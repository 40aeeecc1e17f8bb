package installpoll

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/httpx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type Activities struct {
	Log    *logger.Logger
	Runner rundeck.Client
}

// Poll makes exactly one job runner status call.
func (a *Activities) Poll(ctx context.Context, executionID string) (PollResult, error) {
	res := PollResult{ExecutionID: executionID}
	if a == nil || a.Runner == nil {
		return res, temporal.NewNonRetryableApplicationError("installpoll: activity not configured", errTypeLookupFailed, nil)
	}
	exec, err := a.Runner.Execution(ctx, executionID)
	if err != nil {
		observability.Current().IncPollAttempt("temporal", "error")
		if !httpx.IsTransient(err) {
			return res, temporal.NewNonRetryableApplicationError(fmt.Sprintf("execution %s lookup failed", executionID), errTypeLookupFailed, err)
		}
		if a.Log != nil {
			a.Log.Warn("Execution poll failed; activity will retry", "execution_id", executionID, "error", err)
		}
		return res, err
	}
	observability.Current().IncPollAttempt("temporal", exec.Status)
	res.Status = exec.Status
	res.Terminal = exec.IsTerminal()
	return res, nil
}
