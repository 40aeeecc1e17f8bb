package rundeck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	StatusRunning         = "running"
	StatusQueued          = "queued"
	StatusScheduled       = "scheduled"
	StatusSucceeded       = "succeeded"
	StatusFailed          = "failed"
	StatusAborted         = "aborted"
	StatusTimedOut        = "timedout"
	StatusFailedWithRetry = "failed-with-retry"
)

// ExecutionID accepts both numeric and string ids from the API.
type ExecutionID string

func (id *ExecutionID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ExecutionID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("execution id: %w", err)
	}
	*id = ExecutionID(n.String())
	return nil
}

func (id ExecutionID) String() string { return string(id) }

type Execution struct {
	ID          ExecutionID    `json:"id"`
	Status      string         `json:"status"`
	Href        string         `json:"href,omitempty"`
	Permalink   string         `json:"permalink,omitempty"`
	Project     string         `json:"project,omitempty"`
	Description string         `json:"description,omitempty"`
	Argstring   string         `json:"argstring,omitempty"`
	DateStarted *executionTime `json:"date-started,omitempty"`
	DateEnded   *executionTime `json:"date-ended,omitempty"`
}

type executionTime struct {
	UnixTime int64  `json:"unixtime"`
	Date     string `json:"date"`
}

// IsTerminal reports whether the execution has stopped running, successfully
// or not.
func (e *Execution) IsTerminal() bool {
	if e == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(e.Status)) {
	case "", StatusRunning, StatusQueued, StatusScheduled:
		return false
	default:
		return true
	}
}

func (e *Execution) Succeeded() bool {
	return e != nil && strings.EqualFold(strings.TrimSpace(e.Status), StatusSucceeded)
}
