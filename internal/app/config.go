package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/envutil"
	"github.com/yungbote/installdesk-backend/internal/temporalx"
)

const (
	PollBackendLocal    = "local"
	PollBackendTemporal = "temporal"
)

// Config is the bot API and worker configuration.
type Config struct {
	LogMode         string        `env:"LOG_MODE" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"3978" validate:"required,numeric"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Chat gateway credentials.
	AppID               string `env:"MICROSOFT_APP_ID,required,notEmpty"`
	AppPassword         string `env:"MICROSOFT_APP_PASSWORD,required,notEmpty"`
	VerifyGatewayTokens bool   `env:"GATEWAY_VERIFY_TOKENS" envDefault:"false"`

	RundeckURL        string `env:"RUNDECK_URL,required,notEmpty" validate:"url"`
	RundeckToken      string `env:"RUNDECK_TOKEN,required,notEmpty"`
	RundeckJobID      string `env:"RUNDECK_JOB_ID,required,notEmpty"`
	RundeckAPIVersion int    `env:"RUNDECK_API_VERSION" envDefault:"41" validate:"gte=11"`

	TicketingURL      string        `env:"TICKETING_URL,required,notEmpty" validate:"url"`
	TicketingUsername string        `env:"TICKETING_USERNAME,required,notEmpty"`
	TicketingPassword string        `env:"TICKETING_PASSWORD,required,notEmpty"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_HTTP_TIMEOUT" envDefault:"15s" validate:"gt=0"`

	StoreDSN string `env:"STORE_DSN,required,notEmpty"`

	PollBackend   string        `env:"POLL_BACKEND" envDefault:"local" validate:"oneof=local temporal"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"5s" validate:"gt=0"`
	PollTimeout   time.Duration `env:"POLL_TIMEOUT" envDefault:"30m" validate:"gt=0"`
	PollMaxErrors int           `env:"POLL_MAX_ERRORS" envDefault:"3" validate:"gte=0"`
	// EmbeddedWorker runs the poll workflow worker inside serve.
	EmbeddedWorker bool `env:"TEMPORAL_EMBEDDED_WORKER" envDefault:"true"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"installdesk:"`
	ModeTTL       time.Duration `env:"SUPERVISOR_MODE_TTL" envDefault:"12h"`
	LockTTL       time.Duration `env:"REQUEST_LOCK_TTL" envDefault:"45m"`

	Otel     observability.OtelConfig
	Temporal temporalx.Config
}

// ProxyConfig is the ticket mediation service configuration.
type ProxyConfig struct {
	LogMode         string        `env:"LOG_MODE" envDefault:"development"`
	Port            string        `env:"TICKET_PROXY_PORT" envDefault:"5000" validate:"required,numeric"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	InstanceURL string        `env:"SERVICENOW_INSTANCE,required,notEmpty" validate:"url"`
	Username    string        `env:"SERVICENOW_USER,required,notEmpty"`
	Password    string        `env:"SERVICENOW_PASS,required,notEmpty"`
	Table       string        `env:"SERVICENOW_TABLE" envDefault:"incident"`
	Timeout     time.Duration `env:"SERVICENOW_TIMEOUT" envDefault:"20s" validate:"gt=0"`
	StateMap    string        `env:"SERVICENOW_STATE_MAP"`

	// Basic auth expected from the bot; disabled when the username is empty.
	AuthUsername string `env:"TICKET_PROXY_USERNAME"`
	AuthPassword string `env:"TICKET_PROXY_PASSWORD"`

	Otel observability.OtelConfig
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads .env files (if present) and then the environment.
func LoadConfig() (Config, error) {
	if _, err := envutil.LoadDotenv(".env", ".env.local"); err != nil {
		return Config{}, err
	}
	cfg, err := envutil.Parse[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func LoadProxyConfig() (ProxyConfig, error) {
	if _, err := envutil.LoadDotenv(".env", ".env.local"); err != nil {
		return ProxyConfig{}, err
	}
	cfg, err := envutil.Parse[ProxyConfig]()
	if err != nil {
		return ProxyConfig{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, fmt.Errorf("invalid config: %w", err))
	}
	if c.PollInterval > 0 && c.PollTimeout > 0 && c.PollTimeout < c.PollInterval {
		errs = append(errs, fmt.Errorf("invalid config: POLL_TIMEOUT (%s) is shorter than POLL_INTERVAL (%s)", c.PollTimeout, c.PollInterval))
	}
	if c.PollBackend == PollBackendTemporal && !c.Temporal.Enabled() {
		errs = append(errs, errors.New("invalid config: POLL_BACKEND=temporal requires TEMPORAL_ADDRESS"))
	}
	return errors.Join(errs...)
}

func (c ProxyConfig) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, fmt.Errorf("invalid config: %w", err))
	}
	if (strings.TrimSpace(c.AuthUsername) == "") != (c.AuthPassword == "") {
		errs = append(errs, errors.New("invalid config: TICKET_PROXY_USERNAME and TICKET_PROXY_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string      { return ":" + c.Port }
func (c ProxyConfig) Addr() string { return ":" + c.Port }
