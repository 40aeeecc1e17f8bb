package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/installdesk-backend/internal/platform/envutil"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"MICROSOFT_APP_ID":       "app-1",
		"MICROSOFT_APP_PASSWORD": "pw",
		"RUNDECK_URL":            "http://rundeck:4440",
		"RUNDECK_TOKEN":          "tok",
		"RUNDECK_JOB_ID":         "job-1",
		"TICKETING_URL":          "http://ticket-proxy:5000",
		"TICKETING_USERNAME":     "bot",
		"TICKETING_PASSWORD":     "pw",
		"STORE_DSN":              "file:installdesk.db",
	} {
		t.Setenv(k, v)
	}
}

func TestConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := envutil.Parse[Config]()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "3978", cfg.Port)
	assert.Equal(t, PollBackendLocal, cfg.PollBackend)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Minute, cfg.PollTimeout)
	assert.Equal(t, 41, cfg.RundeckAPIVersion)
	assert.Equal(t, "installdesk", cfg.Temporal.TaskQueue)
	assert.False(t, cfg.Otel.Enabled)
}

func TestConfigMissingRequiredIsFatal(t *testing.T) {
	setRequired(t)
	t.Setenv("RUNDECK_TOKEN", "")
	_, err := envutil.Parse[Config]()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUNDECK_TOKEN")
}

func TestConfigValidate(t *testing.T) {
	setRequired(t)

	t.Setenv("POLL_INTERVAL", "10s")
	t.Setenv("POLL_TIMEOUT", "5s")
	cfg, err := envutil.Parse[Config]()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "POLL_TIMEOUT")

	t.Setenv("POLL_TIMEOUT", "1m")
	t.Setenv("POLL_BACKEND", "temporal")
	cfg, err = envutil.Parse[Config]()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "TEMPORAL_ADDRESS")

	t.Setenv("POLL_BACKEND", "local")
	t.Setenv("RUNDECK_URL", "not a url")
	cfg, err = envutil.Parse[Config]()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestProxyConfig(t *testing.T) {
	t.Setenv("SERVICENOW_INSTANCE", "https://dev1.service-now.com")
	t.Setenv("SERVICENOW_USER", "admin")
	t.Setenv("SERVICENOW_PASS", "pw")
	cfg, err := envutil.Parse[ProxyConfig]()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "incident", cfg.Table)
	assert.Equal(t, ":5000", cfg.Addr())

	cfg.AuthUsername = "bot"
	assert.Error(t, cfg.Validate())
}
