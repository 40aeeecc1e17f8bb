package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/installdesk-backend/internal/clients/ticketing"
	"github.com/yungbote/installdesk-backend/internal/data/repos"
	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type SubmitInput struct {
	UserID   string `json:"user_id" validate:"required,max=256"`
	Software string `json:"software" validate:"required,max=256"`
	Version  string `json:"version" validate:"required,max=128"`
}

// IngestionService opens a ticket for a new install request and only then
// stores it.
type IngestionService interface {
	Submit(ctx context.Context, in SubmitInput) (*types.InstallRequest, error)
}

type ingestionService struct {
	log      *logger.Logger
	validate *validator.Validate
	requests repos.InstallRequestRepo
	events   repos.RequestEventRepo
	tickets  ticketing.Client
}

func NewIngestionService(
	baseLog *logger.Logger,
	requests repos.InstallRequestRepo,
	events repos.RequestEventRepo,
	tickets ticketing.Client,
) IngestionService {
	return &ingestionService{
		log:      baseLog.With("service", "IngestionService"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		requests: requests,
		events:   events,
		tickets:  tickets,
	}
}

func (s *ingestionService) Submit(ctx context.Context, in SubmitInput) (*types.InstallRequest, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Software = strings.TrimSpace(in.Software)
	in.Version = strings.TrimSpace(in.Version)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ticket, err := s.tickets.Create(ctx, ticketing.CreateRequest{
		ShortDescription: fmt.Sprintf("Install %s %s for %s", in.Software, in.Version, in.UserID),
		Description:      fmt.Sprintf("Software request from %s", in.UserID),
		Category:         "software",
	})
	if err != nil {
		s.log.Warn("Ticket creation failed", "user_id", in.UserID, "software", in.Software, "error", err)
		return nil, fmt.Errorf("%w: create ticket: %w", ErrUpstreamUnavailable, err)
	}

	req, err := s.requests.Create(dbctx.Context{Ctx: ctx}, &types.InstallRequest{
		UserID:       in.UserID,
		Software:     in.Software,
		Version:      in.Version,
		TicketID:     ticket.TicketID,
		TicketNumber: ticket.TicketNumber,
		Status:       types.StatusRequested,
	})
	if err != nil {
		// The ticket exists upstream without a local row; keep its id in the log.
		s.log.Error("Storing request failed after ticket creation", "ticket_id", ticket.TicketID, "ticket_number", ticket.TicketNumber, "error", err)
		return nil, fmt.Errorf("store request: %w", err)
	}

	detail, _ := json.Marshal(map[string]string{"ticket_number": ticket.TicketNumber})
	if _, err := s.events.Append(dbctx.Context{Ctx: ctx}, &types.RequestEvent{
		RequestID: req.ID,
		Kind:      types.EventCreated,
		ToStatus:  types.StatusRequested,
		Detail:    detail,
	}); err != nil {
		s.log.Warn("Audit append failed", "request_id", req.ID, "kind", types.EventCreated, "error", err)
	}
	s.log.Info("Install request created", "request_id", req.ID, "user_id", in.UserID, "software", in.Software, "version", in.Version, "ticket_number", ticket.TicketNumber)
	return req, nil
}
