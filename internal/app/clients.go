package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/installdesk-backend/internal/clients/redis"
	"github.com/yungbote/installdesk-backend/internal/clients/rundeck"
	"github.com/yungbote/installdesk-backend/internal/clients/ticketing"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
	"github.com/yungbote/installdesk-backend/internal/temporalx"
)

type Clients struct {
	Tickets  ticketing.Client
	Runner   rundeck.Client
	Redis    *goredis.Client
	Temporal temporalsdkclient.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	tickets, err := ticketing.New(log, ticketing.Config{
		BaseURL:  cfg.TicketingURL,
		Username: cfg.TicketingUsername,
		Password: cfg.TicketingPassword,
		Timeout:  cfg.UpstreamTimeout,
	})
	if err != nil {
		return out, fmt.Errorf("init ticketing client: %w", err)
	}
	out.Tickets = tickets

	runner, err := newRunnerClient(log, cfg)
	if err != nil {
		return out, err
	}
	out.Runner = runner

	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, log, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return out, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	if cfg.PollBackend == PollBackendTemporal {
		tc, err := temporalx.NewClient(log, cfg.Temporal)
		if err != nil {
			out.Close()
			return out, fmt.Errorf("init temporal: %w", err)
		}
		out.Temporal = tc
	}
	return out, nil
}

func newRunnerClient(log *logger.Logger, cfg Config) (rundeck.Client, error) {
	runner, err := rundeck.New(log, rundeck.Config{
		BaseURL:    cfg.RundeckURL,
		Token:      cfg.RundeckToken,
		APIVersion: cfg.RundeckAPIVersion,
		Timeout:    cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init job runner client: %w", err)
	}
	return runner, nil
}

func (c Clients) Close() {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
