package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func MongoConfigFromEnv() MongoConfig {
	return MongoConfig{
		URI:      envutil.String("MONGO_URI", ""),
		Database: envutil.String("MONGO_DATABASE", "myu_chat"),
		Timeout:  envutil.Duration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
	}
}

type MongoService struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

// NewMongoService connects and pings before returning.
func NewMongoService(logg *logger.Logger, cfg MongoConfig) (*MongoService, error) {
	serviceLog := logg.With("service", "MongoService")
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("missing MONGO_URI")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	serviceLog.Info("Connected to MongoDB", "database", cfg.Database)
	return &MongoService{client: client, db: client.Database(cfg.Database), log: serviceLog}, nil
}

func (s *MongoService) Database() *mongo.Database { return s.db }

func (s *MongoService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
