package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpH "github.com/yungbote/installdesk-backend/internal/http/handlers"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func serve(r http.Handler, method, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		BaseConfig:    BaseConfig{Log: testLogger(t), Metrics: observability.Current()},
		HealthHandler: httpH.NewHealthHandler(),
	})

	rec := serve(r, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "installdesk_api_requests_total"))
}

func TestRouterSkipsUnconfiguredHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{BaseConfig: BaseConfig{Log: testLogger(t)}})
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/messages", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/metrics", nil).Code)
}

func TestTicketProxyRouterBasicAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewTicketProxyRouter(TicketProxyRouterConfig{
		BaseConfig:    BaseConfig{Log: testLogger(t)},
		HealthHandler: httpH.NewHealthHandler(),
		TicketHandler: httpH.NewTicketHandler(nil),
		Accounts:      gin.Accounts{"bot": "pw"},
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/ticket/abc", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthcheck", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/ticket/abc", func(req *http.Request) {
		req.SetBasicAuth("bot", "wrong")
	}).Code)
}
