package db

import (
	types "github.com/yungbote/installdesk-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.InstallRequest{},
		&types.RequestEvent{},
	)
}

func (s *StoreService) AutoMigrateAll() error {
	s.log.Info("Auto migrating store tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
