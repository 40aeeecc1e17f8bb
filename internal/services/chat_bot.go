package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

const supervisorHelp = "Supervisor mode enabled. Commands:\n" +
	"- `approve <id>`: Approve request (ticket -> In Progress)\n" +
	"- `install <id>`: Trigger installation (job runner + ticket close)\n" +
	"- `reject <id>`: Reject request (ticket -> Cancelled)\n" +
	"- `status <id>`: Show request status and recent events\n" +
	"- `exit`: Leave supervisor mode"

const normalModeReply = "Back to normal user mode."

// ChatBotService turns one inbound activity into the replies for it. Replies
// are returned to the caller rather than pushed to the gateway.
type ChatBotService interface {
	Handle(ctx context.Context, in *Activity) ([]*Activity, error)
}

type chatBotService struct {
	log      *logger.Logger
	modes    ModeStore
	workflow InstallWorkflowService
}

func NewChatBotService(baseLog *logger.Logger, modes ModeStore, workflow InstallWorkflowService) ChatBotService {
	if modes == nil {
		modes = NewMemoryModeStore()
	}
	return &chatBotService{
		log:      baseLog.With("service", "ChatBotService"),
		modes:    modes,
		workflow: workflow,
	}
}

func (s *chatBotService) Handle(ctx context.Context, in *Activity) ([]*Activity, error) {
	if in == nil || !strings.EqualFold(in.Type, ActivityTypeMessage) {
		return []*Activity{}, nil
	}
	convID := in.ConversationID()
	raw := strings.TrimSpace(in.Text)
	text := strings.ToLower(raw)

	var texts []string
	say := func(msg string) { texts = append(texts, msg) }

	switch text {
	case "supervisor":
		if err := s.modes.SetSupervisor(ctx, convID, true); err != nil {
			return nil, fmt.Errorf("%w: set supervisor mode: %w", ErrUpstreamUnavailable, err)
		}
		say(supervisorHelp)
	case "exit":
		if err := s.modes.SetSupervisor(ctx, convID, false); err != nil {
			return nil, fmt.Errorf("%w: clear supervisor mode: %w", ErrUpstreamUnavailable, err)
		}
		say(normalModeReply)
	default:
		supervisor, err := s.modes.IsSupervisor(ctx, convID)
		if err != nil {
			return nil, fmt.Errorf("%w: read supervisor mode: %w", ErrUpstreamUnavailable, err)
		}
		if !supervisor {
			say(fmt.Sprintf("You said: %s. Type `supervisor` to enter supervisor mode.", raw))
			break
		}
		s.runCommand(ctx, text, say)
	}

	out := make([]*Activity, 0, len(texts))
	for _, t := range texts {
		out = append(out, reply(in, t))
	}
	return out, nil
}

func (s *chatBotService) runCommand(ctx context.Context, text string, say func(string)) {
	cmd, err := ParseSupervisorCommand(text)
	if err != nil {
		say(commandUsage)
		return
	}
	log := s.log.With("verb", cmd.Verb, "request_id", cmd.ID)

	switch cmd.Verb {
	case VerbApprove:
		if _, err := s.workflow.Approve(ctx, cmd.ID); err != nil {
			log.Warn("Approve failed", "error", err)
			say(commandErrorReply(cmd, err))
			return
		}
		say(fmt.Sprintf("Request %d approved (ticket -> In Progress).", cmd.ID))
	case VerbReject:
		if _, err := s.workflow.Reject(ctx, cmd.ID); err != nil {
			log.Warn("Reject failed", "error", err)
			say(commandErrorReply(cmd, err))
			return
		}
		say(fmt.Sprintf("Request %d rejected (ticket -> Cancelled).", cmd.ID))
	case VerbInstall:
		if _, err := s.workflow.Install(ctx, cmd.ID, Reporter(say)); err != nil {
			log.Warn("Install failed", "error", err)
			say(commandErrorReply(cmd, err))
			return
		}
		say(fmt.Sprintf("Installation complete for request %d (ticket -> Closed).", cmd.ID))
	case VerbStatus:
		view, err := s.workflow.Status(ctx, cmd.ID)
		if err != nil {
			say(commandErrorReply(cmd, err))
			return
		}
		say(formatRequestView(view))
	default:
		say("Unknown supervisor command.")
	}
}

// commandErrorReply renders an engine error as a chat line.
func commandErrorReply(cmd SupervisorCommand, err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("Request %d not found.", cmd.ID)
	case errors.Is(err, ErrBusy):
		return fmt.Sprintf("Request %d is busy with another command; try again shortly.", cmd.ID)
	case errors.Is(err, ErrTerminalState):
		return fmt.Sprintf("Request %d is already closed and accepts no further commands.", cmd.ID)
	case errors.Is(err, ErrInvalidTransition):
		return fmt.Sprintf("Cannot %s request %d in its current state.", cmd.Verb, cmd.ID)
	case errors.Is(err, ErrPollTimeout):
		return fmt.Sprintf("Installation for request %d did not finish in time; the ticket stays open.", cmd.ID)
	case errors.Is(err, ErrExecutionFailed):
		return fmt.Sprintf("Installation for request %d failed; the ticket stays open and `install %d` can be retried.", cmd.ID, cmd.ID)
	case errors.Is(err, ErrUpstreamUnavailable):
		return fmt.Sprintf("Could not %s request %d: an upstream service is unavailable.", cmd.Verb, cmd.ID)
	default:
		return fmt.Sprintf("Could not %s request %d.", cmd.Verb, cmd.ID)
	}
}

func formatRequestView(v *RequestView) string {
	if v == nil || v.Request == nil {
		return ""
	}
	r := v.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Request %d: %s %s for %s is %s (ticket %s).", r.ID, r.Software, r.Version, r.UserID, r.Status, r.TicketNumber)
	for _, ev := range v.Events {
		b.WriteString("\n- ")
		b.WriteString(ev.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
		b.WriteString(string(ev.Kind))
		if ev.ExecutionID != "" {
			fmt.Fprintf(&b, " (execution %s)", ev.ExecutionID)
		}
		if ev.ToStatus != "" && ev.ToStatus != ev.FromStatus {
			fmt.Fprintf(&b, " -> %s", ev.ToStatus)
		}
	}
	return b.String()
}

func reply(in *Activity, text string) *Activity {
	out := &Activity{
		Type:         ActivityTypeMessage,
		ID:           uuid.NewString(),
		Text:         text,
		ReplyToID:    in.ID,
		Conversation: in.Conversation,
		ServiceURL:   in.ServiceURL,
		ChannelID:    in.ChannelID,
	}
	if in.Recipient != nil {
		out.From = in.Recipient
	}
	if in.From != nil {
		out.Recipient = in.From
	}
	return out
}
