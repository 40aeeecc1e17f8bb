package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/installdesk-backend/internal/clients/redis"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
	"github.com/yungbote/installdesk-backend/internal/services"
	"github.com/yungbote/installdesk-backend/internal/temporalx/installpoll"
)

type Services struct {
	Ingestion services.IngestionService
	Workflow  services.InstallWorkflowService
	Bot       services.ChatBotService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	pollCfg := services.PollConfig{
		Interval:  cfg.PollInterval,
		Timeout:   cfg.PollTimeout,
		MaxErrors: cfg.PollMaxErrors,
	}
	var poller services.ExecutionPoller
	if cfg.PollBackend == PollBackendTemporal && clients.Temporal != nil {
		log.Info("Execution polling via Temporal", "task_queue", cfg.Temporal.TaskQueue)
		poller = installpoll.NewPoller(log, clients.Temporal, cfg.Temporal.TaskQueue, pollCfg)
	} else {
		poller = services.NewLocalPoller(log, clients.Runner, pollCfg)
	}

	var (
		locks services.Locker
		modes services.ModeStore
	)
	if clients.Redis != nil {
		log.Info("Supervisor mode and request locks in Redis", "prefix", cfg.RedisPrefix)
		locks = redis.NewLocker(clients.Redis, log, cfg.RedisPrefix, cfg.LockTTL)
		modes = redis.NewSessionStore(clients.Redis, cfg.RedisPrefix, cfg.ModeTTL)
	} else {
		locks = services.NewMemoryLocker()
		modes = services.NewMemoryModeStore()
	}

	workflow := services.NewInstallWorkflowService(
		db, log, repos.Requests, repos.Events,
		clients.Tickets, clients.Runner, poller, locks, cfg.RundeckJobID,
	)
	return Services{
		Ingestion: services.NewIngestionService(log, repos.Requests, repos.Events, clients.Tickets),
		Workflow:  workflow,
		Bot:       services.NewChatBotService(log, modes, workflow),
	}
}
