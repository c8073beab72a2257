package db

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// SQLiteService backs single-node deployments and repository tests.
// Use ":memory:" or "file::memory:?cache=shared" for an ephemeral database.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(logg *logger.Logger, path string) (*SQLiteService, error) {
	serviceLog := logg.With("service", "SQLiteService")
	if path == "" {
		return nil, fmt.Errorf("missing SQLITE_PATH")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: NewGormLogger(serviceLog),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %s: %w", path, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// a single writer avoids SQLITE_BUSY under concurrent saves
		sqlDB.SetMaxOpenConns(1)
	}
	return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

func (s *SQLiteService) AutoMigrateAll() error { return AutoMigrateAll(s.db) }

func (s *SQLiteService) Close() error { return closeGorm(s.db) }

func (s *SQLiteService) Ping(ctx context.Context) error { return pingGorm(ctx, s.db) }
