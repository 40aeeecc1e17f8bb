package app

import (
	"context"
	"errors"
	"fmt"

	storedb "github.com/yungbote/installdesk-backend/internal/data/db"
	"github.com/yungbote/installdesk-backend/internal/observability"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
	"github.com/yungbote/installdesk-backend/internal/temporalx"
	"github.com/yungbote/installdesk-backend/internal/temporalx/temporalworker"
)

// RunWorker runs a standalone Temporal worker for the poll workflow until
// ctx is cancelled.
func RunWorker(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	if !cfg.Temporal.Enabled() {
		return errors.New("worker requires TEMPORAL_ADDRESS")
	}

	shutdown := observability.InitOTel(ctx, log, cfg.Otel)
	defer func() { _ = shutdown(context.Background()) }()

	tc, err := temporalx.NewClient(log, cfg.Temporal)
	if err != nil {
		return fmt.Errorf("init temporal: %w", err)
	}
	defer tc.Close()

	runner, err := newRunnerClient(log, cfg)
	if err != nil {
		return err
	}
	w, err := temporalworker.NewRunner(log, tc, cfg.Temporal, runner)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	log.Info("Worker stopping")
	return nil
}

// Migrate creates or updates the store schema and exits.
func Migrate(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := storedb.NewStoreService(log, cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()
	if err := store.AutoMigrateAll(); err != nil {
		return fmt.Errorf("store automigrate: %w", err)
	}
	log.Info("Store migrated", "driver", store.Driver())
	return nil
}
