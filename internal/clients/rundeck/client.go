package rundeck

import (
	"bytes"
	"context"
	"encoding/json"
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

const DefaultAPIVersion = 41

// Client performs single job runner calls; polling cadence is the caller's
// concern.
type Client interface {
	Trigger(ctx context.Context, jobID string, options map[string]string) (*Execution, error)
	Execution(ctx context.Context, executionID string) (*Execution, error)
}

type Config struct {
	BaseURL    string
	Token      string
	APIVersion int
	Timeout    time.Duration
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
		return nil, fmt.Errorf("missing job runner base url")
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, fmt.Errorf("missing job runner token")
	}
	if cfg.APIVersion <= 0 {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &client{
		log:        log.With("client", "RundeckClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type runRequest struct {
	Options map[string]string `json:"options"`
}

func (c *client) Trigger(ctx context.Context, jobID string, options map[string]string) (*Execution, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("rundeck: job id required")
	}
	if options == nil {
		options = map[string]string{}
	}
	var out Execution
	path := fmt.Sprintf("/api/%d/job/%s/run", c.cfg.APIVersion, url.PathEscape(jobID))
	if err := c.do(ctx, "trigger", http.MethodPost, path, runRequest{Options: options}, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("rundeck: run response has no execution id")
	}
	c.log.Info("Job triggered", "job_id", jobID, "execution_id", out.ID)
	return &out, nil
}

func (c *client) Execution(ctx context.Context, executionID string) (*Execution, error) {
	executionID = strings.TrimSpace(executionID)
	if executionID == "" {
		return nil, fmt.Errorf("rundeck: execution id required")
	}
	var out Execution
	path := fmt.Sprintf("/api/%d/execution/%s", c.cfg.APIVersion, url.PathEscape(executionID))
	if err := c.do(ctx, "execution", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type apiError struct {
	Error     bool   `json:"error"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "rundeck: <nil error>"
	}
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		if e.APIError.ErrorCode != "" {
			return fmt.Sprintf("rundeck http %d: %s (code=%s)", e.StatusCode, e.APIError.Message, e.APIError.ErrorCode)
		}
		return fmt.Sprintf("rundeck http %d: %s", e.StatusCode, e.APIError.Message)
	}
	return fmt.Sprintf("rundeck http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) do(ctx context.Context, op, method, path string, body any, out any) (err error) {
	ctx, span := observability.Tracer("rundeck").Start(ctxutil.Default(ctx), "rundeck."+op)
	span.SetAttributes(attribute.String("http.method", method), attribute.String("rundeck.path", path))
	start := time.Now()
	defer func() {
		observability.Current().ObserveClientCall("rundeck", op, time.Since(start), err)
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
			return fmt.Errorf("rundeck encode: %w", mErr)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Rundeck-Auth-Token", c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rundeck %s: %w", op, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("rundeck %s read: %w", op, readErr)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && strings.TrimSpace(ae.Message) != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Body: httpx.Truncate(raw, 2000), APIError: &ae}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Body: httpx.Truncate(raw, 2000)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("rundeck decode error: %w; raw=%s", err, httpx.Truncate(raw, 500))
	}
	return nil
}
