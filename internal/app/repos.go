package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/installdesk-backend/internal/data/repos"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type Repos struct {
	Requests repos.InstallRequestRepo
	Events   repos.RequestEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Requests: repos.NewInstallRequestRepo(db, log),
		Events:   repos.NewRequestEventRepo(db, log),
	}
}
