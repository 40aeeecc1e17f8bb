package installpoll

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type scriptedRunner struct {
	mu       sync.Mutex
	statuses []string
	errs     []error
	calls    int
}

func (r *scriptedRunner) Trigger(context.Context, string, map[string]string) (*rundeck.Execution, error) {
	return &rundeck.Execution{ID: "1", Status: rundeck.StatusRunning}, nil
}

func (r *scriptedRunner) Execution(_ context.Context, id string) (*rundeck.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if i < len(r.errs) && r.errs[i] != nil {
		return nil, r.errs[i]
	}
	status := r.statuses[len(r.statuses)-1]
	if i < len(r.statuses) {
		status = r.statuses[i]
	}
	return &rundeck.Execution{ID: rundeck.ExecutionID(id), Status: status}, nil
}

func newEnv(t *testing.T, runner rundeck.Client) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	log, err := logger.New("test")
	require.NoError(t, err)
	acts := &Activities{Log: log, Runner: runner}
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	env.RegisterActivityWithOptions(acts.Poll, activity.RegisterOptions{Name: ActivityPoll})
	return env
}

func TestWorkflowPollsUntilTerminal(t *testing.T) {
	runner := &scriptedRunner{statuses: []string{rundeck.StatusQueued, rundeck.StatusRunning, rundeck.StatusSucceeded}}
	env := newEnv(t, runner)

	env.ExecuteWorkflow(WorkflowName, Input{ExecutionID: "42", Interval: 5 * time.Second, Timeout: time.Minute})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res Result
	require.NoError(t, env.GetWorkflowResult(&res))
	assert.Equal(t, rundeck.StatusSucceeded, res.Status)
	assert.Equal(t, 3, res.Polls)
	assert.False(t, res.TimedOut)
}

func TestWorkflowReportsTimeout(t *testing.T) {
	runner := &scriptedRunner{statuses: []string{rundeck.StatusRunning}}
	env := newEnv(t, runner)

	env.ExecuteWorkflow(WorkflowName, Input{ExecutionID: "42", Interval: 10 * time.Second, Timeout: 35 * time.Second})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res Result
	require.NoError(t, env.GetWorkflowResult(&res))
	assert.True(t, res.TimedOut)
	assert.Equal(t, rundeck.StatusRunning, res.Status)
	assert.Equal(t, 4, res.Polls)
}

func TestWorkflowFailsOnDefinitiveLookupError(t *testing.T) {
	runner := &scriptedRunner{
		statuses: []string{rundeck.StatusRunning},
		errs:     []error{&rundeck.HTTPError{StatusCode: http.StatusNotFound}},
	}
	env := newEnv(t, runner)

	env.ExecuteWorkflow(WorkflowName, Input{ExecutionID: "42", Interval: time.Second, Timeout: time.Minute, MaxErrors: 3})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 1, runner.calls)
}

func TestWorkflowRequiresExecutionID(t *testing.T) {
	env := newEnv(t, &scriptedRunner{statuses: []string{rundeck.StatusRunning}})
	env.ExecuteWorkflow(WorkflowName, Input{})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
