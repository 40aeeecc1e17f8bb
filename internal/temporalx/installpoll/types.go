package installpoll

import "time"

const (
	WorkflowName = "install_poll"
	ActivityPoll = "install_poll_execution"

	// errTypeLookupFailed marks activity errors that retrying cannot fix.
	errTypeLookupFailed = "ExecutionLookupFailed"
)

func WorkflowID(executionID string) string {
	return "install-poll-" + executionID
}

type Input struct {
	ExecutionID string        `json:"execution_id"`
	Interval    time.Duration `json:"interval"`
	Timeout     time.Duration `json:"timeout"`
	MaxErrors   int           `json:"max_errors"`

	// Deadline and Polls carry state across continue-as-new.
	Deadline time.Time `json:"deadline,omitempty"`
	Polls    int       `json:"polls,omitempty"`
}

type PollResult struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
	Terminal    bool   `json:"terminal"`
}

type Result struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
	Polls       int    `json:"polls"`
	TimedOut    bool   `json:"timed_out"`
}
