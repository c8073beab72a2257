package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/myu-chat-backend/internal/data/db"
	"github.com/yungbote/myu-chat-backend/internal/data/repos/conversation"
	"github.com/yungbote/myu-chat-backend/internal/http/handlers"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// Storage is the durable conversation store plus what must be closed and
// pinged with it.
type Storage struct {
	Conversations conversation.Repo
	GormDB        *gorm.DB
	Checks        map[string]handlers.Pinger
	closers       []func() error
}

func (s *Storage) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

func wireStorage(ctx context.Context, log *logger.Logger, cfg Config) (*Storage, error) {
	log.Info("Wiring conversation storage...", "driver", cfg.StoreDriver)
	st := &Storage{Checks: map[string]handlers.Pinger{}}

	switch cfg.StoreDriver {
	case StorePostgres:
		pg, err := db.NewPostgresService(log, db.PostgresConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		st.closers = append(st.closers, pg.Close)
		if err := pg.AutoMigrateAll(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		st.GormDB = pg.DB()
		st.Conversations = conversation.NewGormRepo(pg.DB(), log)
		st.Checks["postgres"] = pg

	case StoreSQLite:
		sq, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		st.closers = append(st.closers, sq.Close)
		if err := sq.AutoMigrateAll(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		st.GormDB = sq.DB()
		st.Conversations = conversation.NewGormRepo(sq.DB(), log)
		st.Checks["sqlite"] = sq

	case StoreMongo:
		mg, err := db.NewMongoService(log, db.MongoConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("init mongo: %w", err)
		}
		st.closers = append(st.closers, mg.Close)
		repo, err := conversation.NewMongoRepo(ctx, mg.Database(), log)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("init mongo conversation repo: %w", err)
		}
		st.Conversations = repo
		st.Checks["mongo"] = mg

	case StoreMemory:
		log.Warn("Conversations are kept in memory only")
		st.Conversations = conversation.NewMemoryRepo()

	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (postgres|sqlite|mongo|memory)", cfg.StoreDriver)
	}
	return st, nil
}
