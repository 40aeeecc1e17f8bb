package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/installdesk-backend/internal/data/repos/requests"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type InstallRequestRepo = requests.InstallRequestRepo
type RequestEventRepo = requests.RequestEventRepo

func NewInstallRequestRepo(db *gorm.DB, baseLog *logger.Logger) InstallRequestRepo {
	return requests.NewInstallRequestRepo(db, baseLog)
}

func NewRequestEventRepo(db *gorm.DB, baseLog *logger.Logger) RequestEventRepo {
	return requests.NewRequestEventRepo(db, baseLog)
}
