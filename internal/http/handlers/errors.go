package handlers

import (
	"errors"
	"net/http"

	"github.com/yungbote/installdesk-backend/internal/platform/apierr"
	"github.com/yungbote/installdesk-backend/internal/services"
)

// toAPIError maps service sentinels to HTTP status and error code.
func toAPIError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidCommand):
		return apierr.BadRequest("invalid_input", err)
	case errors.Is(err, services.ErrNotFound):
		return apierr.NotFound("request_not_found", err)
	case errors.Is(err, services.ErrTicketNotFound):
		return apierr.NotFound("ticket_not_found", err)
	case errors.Is(err, services.ErrTerminalState):
		return apierr.Conflict("terminal_state", err)
	case errors.Is(err, services.ErrInvalidTransition):
		return apierr.Conflict("invalid_transition", err)
	case errors.Is(err, services.ErrBusy):
		return apierr.Conflict("busy", err)
	case errors.Is(err, services.ErrPollTimeout):
		return apierr.New(http.StatusGatewayTimeout, "poll_timeout", err)
	case errors.Is(err, services.ErrExecutionFailed):
		return apierr.BadGateway("execution_failed", err)
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return apierr.BadGateway("upstream_unavailable", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
}
