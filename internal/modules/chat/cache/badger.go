package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type BadgerConfig struct {
	// Path is ignored when InMemory is set.
	Path       string
	InMemory   bool
	GCInterval time.Duration
}

func BadgerConfigFromEnv() BadgerConfig {
	return BadgerConfig{
		Path:       envutil.String("BADGER_PATH", "./data/answer-cache"),
		InMemory:   envutil.Bool("BADGER_IN_MEMORY", false),
		GCInterval: envutil.Duration("BADGER_GC_INTERVAL", 5*time.Minute),
	}
}

type badgerBackend struct {
	log  *logger.Logger
	db   *badger.DB
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewBadger opens an embedded store. Entries expire through badger's native
// TTL; a background loop reclaims value-log space.
func NewBadger(log *logger.Logger, cfg BadgerConfig) (*badgerBackend, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger path is required for a persistent cache")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	b := &badgerBackend{
		log:  log.With("service", "BadgerAnswerCache"),
		db:   db,
		stop: make(chan struct{}),
	}
	if !cfg.InMemory && cfg.GCInterval > 0 {
		b.wg.Add(1)
		go b.gcLoop(cfg.GCInterval)
	}
	return b, nil
}

func (b *badgerBackend) Get(_ context.Context, key string) (string, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

func (b *badgerBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl))
	})
}

func (b *badgerBackend) gcLoop(every time.Duration) {
	defer b.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-t.C:
			for b.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

func (b *badgerBackend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stop)
		b.wg.Wait()
		err = b.db.Close()
	})
	return err
}
