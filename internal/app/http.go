package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/installdesk-backend/internal/http"
	httpH "github.com/yungbote/installdesk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/installdesk-backend/internal/http/middleware"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Requests *httpH.RequestHandler
	Messages *httpH.MessageHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Requests: httpH.NewRequestHandler(services.Ingestion, services.Workflow),
		Messages: httpH.NewMessageHandler(services.Bot),
	}
}

func baseHTTPConfig(log *logger.Logger, origins []string, otel observability.OtelConfig) http.BaseConfig {
	base := http.BaseConfig{
		Log:         log,
		Metrics:     observability.Current(),
		CORSOrigins: origins,
	}
	if otel.Enabled {
		base.TraceService = otel.ServiceName
	}
	return base
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) *gin.Engine {
	var gateway *httpMW.GatewayAuth
	if cfg.VerifyGatewayTokens {
		gateway = httpMW.NewGatewayAuth(log, cfg.AppID, cfg.AppPassword)
	}
	return http.NewRouter(http.RouterConfig{
		BaseConfig:     baseHTTPConfig(log, cfg.CORSOrigins, cfg.Otel),
		HealthHandler:  handlers.Health,
		RequestHandler: handlers.Requests,
		MessageHandler: handlers.Messages,
		GatewayAuth:    gateway,
	})
}
