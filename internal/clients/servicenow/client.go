package servicenow

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

var ErrNotFound = errors.New("servicenow record not found")

// Client is a minimal Table API client for one table (incident by default).
type Client interface {
	Create(ctx context.Context, fields map[string]any) (Record, error)
	Update(ctx context.Context, sysID string, fields map[string]any) (Record, error)
	Get(ctx context.Context, sysID string) (Record, error)
}

// Record is one table row as returned under "result".
type Record map[string]any

func (r Record) SysID() string  { return r.str("sys_id") }
func (r Record) Number() string { return r.str("number") }

func (r Record) str(key string) string {
	if r == nil {
		return ""
	}
	switch v := r[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type Config struct {
	InstanceURL string
	Username    string
	Password    string
	Table       string
	Timeout     time.Duration
}

type client struct {
	log        *logger.Logger
	cfg        Config
	tableURL   string
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.InstanceURL = strings.TrimRight(strings.TrimSpace(cfg.InstanceURL), "/")
	if cfg.InstanceURL == "" {
		return nil, fmt.Errorf("missing servicenow instance url")
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, fmt.Errorf("missing servicenow username")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		cfg.Table = "incident"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &client{
		log:        log.With("client", "ServiceNowClient"),
		cfg:        cfg,
		tableURL:   cfg.InstanceURL + "/api/now/table/" + url.PathEscape(cfg.Table),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Create(ctx context.Context, fields map[string]any) (Record, error) {
	return c.do(ctx, "create", http.MethodPost, c.tableURL, fields)
}

func (c *client) Update(ctx context.Context, sysID string, fields map[string]any) (Record, error) {
	sysID = strings.TrimSpace(sysID)
	if sysID == "" {
		return nil, fmt.Errorf("servicenow: sys_id required")
	}
	return c.do(ctx, "update", http.MethodPatch, c.tableURL+"/"+url.PathEscape(sysID), fields)
}

func (c *client) Get(ctx context.Context, sysID string) (Record, error) {
	sysID = strings.TrimSpace(sysID)
	if sysID == "" {
		return nil, fmt.Errorf("servicenow: sys_id required")
	}
	return c.do(ctx, "get", http.MethodGet, c.tableURL+"/"+url.PathEscape(sysID), nil)
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "servicenow: <nil error>"
	}
	return fmt.Sprintf("servicenow http %d: %s", e.StatusCode, e.Body)
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

type envelope struct {
	Result Record `json:"result"`
}

func (c *client) do(ctx context.Context, op, method, endpoint string, body map[string]any) (rec Record, err error) {
	ctx, span := observability.Tracer("servicenow").Start(ctxutil.Default(ctx), "servicenow."+op)
	span.SetAttributes(attribute.String("http.method", method), attribute.String("servicenow.table", c.cfg.Table))
	start := time.Now()
	defer func() {
		observability.Current().ObserveClientCall("servicenow", op, time.Since(start), err)
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
			return nil, fmt.Errorf("servicenow encode: %w", mErr)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("servicenow %s: %w", op, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("servicenow %s read: %w", op, readErr)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("servicenow non-2xx", "op", op, "status", resp.StatusCode)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: httpx.Truncate(raw, 2000)}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("servicenow decode error: %w; raw=%s", err, httpx.Truncate(raw, 500))
	}
	if env.Result == nil {
		env.Result = Record{}
	}
	return env.Result, nil
}
