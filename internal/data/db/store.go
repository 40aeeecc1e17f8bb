package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type StoreService struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// DriverFor picks the gorm dialector for a store DSN. Postgres URLs and
// key/value DSNs go to Postgres; anything else is treated as a SQLite path.
func DriverFor(dsn string) string {
	d := strings.TrimSpace(strings.ToLower(dsn))
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return DriverPostgres
	case strings.Contains(d, "host=") && strings.Contains(d, "dbname="):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

func NewStoreService(logg *logger.Logger, dsn string) (*StoreService, error) {
	serviceLog := logg.With("service", "StoreService")
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("missing store dsn")
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	driver := DriverFor(dsn)
	var (
		theDB *gorm.DB
		err   error
	)
	switch driver {
	case DriverPostgres:
		theDB, err = gorm.Open(postgres.Open(dsn), cfg)
	default:
		theDB, err = OpenSQLite(sqliteDSN(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}
	serviceLog.Info("Store opened", "driver", driver)
	return &StoreService{db: theDB, driver: driver, log: serviceLog}, nil
}

// OpenSQLite opens a SQLite database limited to a single connection; SQLite
// allows one writer at a time and the busy timeout covers short contention.
func OpenSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	theDB, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := theDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return theDB, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout") || strings.Contains(dsn, ":memory:") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000&_journal_mode=WAL"
}

func (s *StoreService) DB() *gorm.DB   { return s.db }
func (s *StoreService) Driver() string { return s.driver }

func (s *StoreService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
