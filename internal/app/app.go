package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	storedb "github.com/yungbote/installdesk-backend/internal/data/db"
	"github.com/yungbote/installdesk-backend/internal/http"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
	"github.com/yungbote/installdesk-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *storedb.StoreService
	Clients  Clients
	Repos    Repos
	Services Services
	Router   *gin.Engine

	otelShutdown func(context.Context) error
}

// New loads configuration and wires the bot API. Any missing required
// setting is returned as an error before anything is dialed.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, log, cfg)
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	store, err := storedb.NewStoreService(log, cfg.StoreDSN)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("store automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(store.DB(), log)
	serviceset := wireServices(store.DB(), log, cfg, reposet, clients)
	handlerset := wireHandlers(log, serviceset)
	router := wireRouter(log, cfg, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Store:        store,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Router:       router,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP, plus the poll workflow worker when Temporal polling is
// embedded, until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	srv := http.NewServer(a.Log, a.Cfg.Addr(), a.Router, a.Cfg.ShutdownTimeout)
	g.Go(func() error { return srv.Run(gctx) })

	if a.Clients.Temporal != nil && a.Cfg.EmbeddedWorker {
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Cfg.Temporal, a.Clients.Runner)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := runner.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("temporal worker: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
