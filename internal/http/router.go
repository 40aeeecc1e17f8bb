package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/installdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/installdesk-backend/internal/http/middleware"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

// BaseConfig is the middleware shared by both HTTP surfaces.
type BaseConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TraceService enables otelgin spans under this service name.
	TraceService string
}

type RouterConfig struct {
	BaseConfig

	HealthHandler  *httpH.HealthHandler
	RequestHandler *httpH.RequestHandler
	MessageHandler *httpH.MessageHandler
	GatewayAuth    *httpMW.GatewayAuth
}

func newEngine(cfg BaseConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TraceService != "" {
		r.Use(otelgin.Middleware(cfg.TraceService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return r
}

// NewRouter builds the bot API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := newEngine(cfg.BaseConfig)

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Ingestion + lookup
		if cfg.RequestHandler != nil {
			api.POST("/request", cfg.RequestHandler.Create)
			api.GET("/requests/:id", cfg.RequestHandler.Get)
		}

		// Chat gateway
		if cfg.MessageHandler != nil {
			api.GET("/messages", cfg.MessageHandler.Ping)
			if cfg.GatewayAuth != nil {
				api.POST("/messages", cfg.GatewayAuth.RequireToken(), cfg.MessageHandler.Receive)
			} else {
				api.POST("/messages", cfg.MessageHandler.Receive)
			}
		}
	}

	return r
}

type TicketProxyRouterConfig struct {
	BaseConfig

	HealthHandler *httpH.HealthHandler
	TicketHandler *httpH.TicketHandler
	// Accounts enables basic auth on the ticket routes when non-empty.
	Accounts gin.Accounts
}

// NewTicketProxyRouter builds the ticket mediation service.
func NewTicketProxyRouter(cfg TicketProxyRouterConfig) *gin.Engine {
	r := newEngine(cfg.BaseConfig)

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	tickets := r.Group("/ticket")
	if len(cfg.Accounts) > 0 {
		tickets.Use(gin.BasicAuth(cfg.Accounts))
	}
	if cfg.TicketHandler != nil {
		tickets.POST("", cfg.TicketHandler.Create)
		tickets.PATCH("/:id", cfg.TicketHandler.Update)
		tickets.GET("/:id", cfg.TicketHandler.Get)
	}

	return r
}
