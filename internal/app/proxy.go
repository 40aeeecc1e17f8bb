package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/installdesk-backend/internal/clients/servicenow"
	"github.com/yungbote/installdesk-backend/internal/http"
	httpH "github.com/yungbote/installdesk-backend/internal/http/handlers"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
	"github.com/yungbote/installdesk-backend/internal/services"
)

// TicketProxy is the ticket mediation service in front of ServiceNow.
type TicketProxy struct {
	Log    *logger.Logger
	Cfg    ProxyConfig
	Router *gin.Engine

	otelShutdown func(context.Context) error
}

func NewTicketProxy(ctx context.Context) (*TicketProxy, error) {
	cfg, err := LoadProxyConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewTicketProxyWithConfig(ctx, log, cfg)
}

func NewTicketProxyWithConfig(ctx context.Context, log *logger.Logger, cfg ProxyConfig) (*TicketProxy, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	states, err := servicenow.LoadStateMap(cfg.StateMap)
	if err != nil {
		return nil, err
	}
	sn, err := servicenow.New(log, servicenow.Config{
		InstanceURL: cfg.InstanceURL,
		Username:    cfg.Username,
		Password:    cfg.Password,
		Table:       cfg.Table,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init servicenow client: %w", err)
	}

	var accounts gin.Accounts
	if cfg.AuthUsername != "" {
		accounts = gin.Accounts{cfg.AuthUsername: cfg.AuthPassword}
	}
	router := http.NewTicketProxyRouter(http.TicketProxyRouterConfig{
		BaseConfig:    baseHTTPConfig(log, nil, cfg.Otel),
		HealthHandler: httpH.NewHealthHandler(),
		TicketHandler: httpH.NewTicketHandler(services.NewTicketProxyService(log, sn, states)),
		Accounts:      accounts,
	})
	return &TicketProxy{Log: log, Cfg: cfg, Router: router, otelShutdown: otelShutdown}, nil
}

func (p *TicketProxy) Run(ctx context.Context) error {
	return http.NewServer(p.Log, p.Cfg.Addr(), p.Router, p.Cfg.ShutdownTimeout).Run(ctx)
}

func (p *TicketProxy) Close() {
	if p == nil {
		return
	}
	if p.otelShutdown != nil {
		_ = p.otelShutdown(context.Background())
	}
	if p.Log != nil {
		p.Log.Sync()
	}
}
