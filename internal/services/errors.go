package services

import (
	"errors"
)

var (
	ErrNotFound            = errors.New("request not found")
	ErrTerminalState       = errors.New("request is already in a terminal state")
	ErrInvalidTransition   = errors.New("command not allowed in the request's current state")
	ErrBusy                = errors.New("another command is in progress for this request")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrInvalidCommand      = errors.New("invalid command")
	ErrInvalidInput        = errors.New("invalid input")
	ErrPollTimeout         = errors.New("timed out waiting for job execution")
	ErrExecutionFailed     = errors.New("job execution did not succeed")
	ErrTicketNotFound      = errors.New("ticket not found")
)

// ResultLabel reduces err to a short label for metrics.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrTerminalState):
		return "terminal_state"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrPollTimeout):
		return "poll_timeout"
	case errors.Is(err, ErrExecutionFailed):
		return "execution_failed"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCommand):
		return "invalid"
	default:
		return "error"
	}
}
