package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/installdesk-backend/internal/platform/httpx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

// ErrNotFound is matched (errors.Is) by an HTTPError carrying a 404.
var ErrNotFound = errors.New("ticket not found")

// Client talks to the ticket mediation service. Every method is a single
// request with no retry.
type Client interface {
	Create(ctx context.Context, req CreateRequest) (*Ticket, error)
	Update(ctx context.Context, ticketID string, fields map[string]any) error
	Get(ctx context.Context, ticketID string) (map[string]any, error)
}

type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

type CreateRequest struct {
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Category         string `json:"category,omitempty"`
}

type Ticket struct {
	TicketID     string `json:"ticketId"`
	TicketNumber string `json:"ticketNumber"`
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing ticketing base url")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid ticketing base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &client{
		log:        log.With("client", "TicketingClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Create(ctx context.Context, req CreateRequest) (*Ticket, error) {
	req.ShortDescription = strings.TrimSpace(req.ShortDescription)
	if req.ShortDescription == "" {
		return nil, fmt.Errorf("ticketing: short description required")
	}
	var out Ticket
	if err := c.do(ctx, "create", http.MethodPost, "/ticket", req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.TicketID) == "" {
		return nil, fmt.Errorf("ticketing: create returned no ticket id")
	}
	return &out, nil
}

func (c *client) Update(ctx context.Context, ticketID string, fields map[string]any) error {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return fmt.Errorf("ticketing: ticket id required")
	}
	return c.do(ctx, "update", http.MethodPatch, "/ticket/"+url.PathEscape(ticketID), fields, nil)
}

func (c *client) Get(ctx context.Context, ticketID string) (map[string]any, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, fmt.Errorf("ticketing: ticket id required")
	}
	out := map[string]any{}
	if err := c.do(ctx, "get", http.MethodGet, "/ticket/"+url.PathEscape(ticketID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "ticketing: <nil error>"
	}
	return fmt.Sprintf("ticketing http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e != nil && e.StatusCode == http.StatusNotFound
}

func (c *client) do(ctx context.Context, op, method, path string, body any, out any) (err error) {
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.Tracer("ticketing").Start(ctx, "ticketing."+op)
	span.SetAttributes(attribute.String("http.method", method), attribute.String("ticketing.path", path))
	start := time.Now()
	defer func() {
		observability.Current().ObserveClientCall("ticketing", op, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		raw, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("ticketing encode: %w", mErr)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		req.Header.Set("X-Request-ID", td.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("ticketing request failed", "op", op, "error", err)
		return fmt.Errorf("ticketing %s: %w", op, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("ticketing %s read: %w", op, readErr)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("ticketing non-2xx", "op", op, "status", resp.StatusCode)
		return &HTTPError{StatusCode: resp.StatusCode, Body: httpx.Truncate(raw, 2000)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ticketing decode error: %w; raw=%s", err, httpx.Truncate(raw, 500))
	}
	return nil
}
