package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"grocery-list/internal/model"
)

const (
	defaultDSN     = "grocery.db"
	defaultOptions = "_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
)

// Tables lists every table owned by the application, in insertion order.
var Tables = []string{"categories", "entries", "entry_names"}

// NewDB opens a SQLite database and runs migrations.
func NewDB(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&model.Category{}, &model.Entry{}, &model.EntryName{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

// NormalizeDSN turns "sqlite:grocery.db" style URLs into a go-sqlite3 DSN.
// Without caller options it adds a busy timeout, WAL and BEGIN IMMEDIATE so
// concurrent writers wait on the busy timeout instead of failing to upgrade
// a read lock.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	if dsn == "" {
		dsn = defaultDSN
	}
	if strings.Contains(dsn, "?") || isMemory(dsn) {
		return dsn
	}
	return dsn + "?" + defaultOptions
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func gormLogLevel() logger.LogLevel {
	if log.IsLevelEnabled(log.DebugLevel) {
		return logger.Info
	}
	return logger.Warn
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if isMemory(dsn) {
		return nil
	}
	dir := filepath.Dir(FilePath(dsn))
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// FilePath strips the file: prefix and query options from a DSN.
func FilePath(dsn string) string {
	clean := strings.TrimPrefix(dsn, "file:")
	return strings.Split(clean, "?")[0]
}
