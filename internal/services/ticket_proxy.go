package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/installdesk-backend/internal/clients/servicenow"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

const defaultTicketCategory = "software"

type TicketCreateInput struct {
	ShortDescription string `json:"shortDescription" validate:"required"`
	Description      string `json:"description"`
	Category         string `json:"category"`
}

// TicketProxyService mediates between the bot's ticket vocabulary and the
// ServiceNow Table API.
type TicketProxyService interface {
	Create(ctx context.Context, in TicketCreateInput) (map[string]any, error)
	Update(ctx context.Context, ticketID string, fields map[string]any) (map[string]any, error)
	Get(ctx context.Context, ticketID string) (map[string]any, error)
}

type ticketProxyService struct {
	log    *logger.Logger
	sn     servicenow.Client
	states servicenow.StateMap
}

func NewTicketProxyService(baseLog *logger.Logger, sn servicenow.Client, states servicenow.StateMap) TicketProxyService {
	if states == nil {
		states = servicenow.DefaultStateMap()
	}
	return &ticketProxyService{
		log:    baseLog.With("service", "TicketProxyService"),
		sn:     sn,
		states: states,
	}
}

func (s *ticketProxyService) Create(ctx context.Context, in TicketCreateInput) (map[string]any, error) {
	short := strings.TrimSpace(in.ShortDescription)
	if short == "" {
		return nil, fmt.Errorf("%w: shortDescription is required", ErrInvalidInput)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultTicketCategory
	}
	rec, err := s.sn.Create(ctx, map[string]any{
		"short_description": short,
		"description":       in.Description,
		"category":          category,
	})
	if err != nil {
		return nil, s.upstreamErr("create", "", err)
	}
	s.log.Info("Ticket created", "ticket_id", rec.SysID(), "ticket_number", rec.Number())
	return ticketResponse(rec), nil
}

func (s *ticketProxyService) Update(ctx context.Context, ticketID string, fields map[string]any) (map[string]any, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, fmt.Errorf("%w: ticket id is required", ErrInvalidInput)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	translated := s.states.Translate(fields)
	rec, err := s.sn.Update(ctx, ticketID, translated)
	if err != nil {
		return nil, s.upstreamErr("update", ticketID, err)
	}
	s.log.Info("Ticket updated", "ticket_id", ticketID, "state", translated["state"])
	return ticketResponse(rec), nil
}

func (s *ticketProxyService) Get(ctx context.Context, ticketID string) (map[string]any, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, fmt.Errorf("%w: ticket id is required", ErrInvalidInput)
	}
	rec, err := s.sn.Get(ctx, ticketID)
	if err != nil {
		return nil, s.upstreamErr("get", ticketID, err)
	}
	return ticketResponse(rec), nil
}

func (s *ticketProxyService) upstreamErr(op, ticketID string, err error) error {
	if errors.Is(err, servicenow.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	s.log.Warn("ServiceNow call failed", "op", op, "ticket_id", ticketID, "error", err)
	return fmt.Errorf("%w: servicenow %s: %w", ErrUpstreamUnavailable, op, err)
}

// ticketResponse returns the record fields plus the ticketId/ticketNumber
// aliases the bot reads.
func ticketResponse(rec servicenow.Record) map[string]any {
	out := make(map[string]any, len(rec)+2)
	for k, v := range rec {
		out[k] = v
	}
	out["ticketId"] = rec.SysID()
	out["ticketNumber"] = rec.Number()
	return out
}
