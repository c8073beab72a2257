package app

import (
	"context"
	"fmt"
	"net"

	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/myu-chat-backend/internal/http"
	httpH "github.com/yungbote/myu-chat-backend/internal/http/handlers"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

const serviceName = "myu-chat"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Router   *gin.Engine
	Services Services
	Storage  *Storage
	Clients  *Clients

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func newLogger() (*logger.Logger, string, error) {
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		return nil, "", fmt.Errorf("init logger: %w", err)
	}
	return log, logMode, nil
}

func New() (*App, error) {
	log, logMode, err := newLogger()
	if err != nil {
		return nil, err
	}
	if logMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	observability.Init(log)
	bg, cancel := context.WithCancel(context.Background())
	a := &App{Log: log, Cfg: cfg, cancel: cancel}
	a.otelShutdown = observability.InitOTel(bg, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	storage, err := wireStorage(bg, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Storage = storage
	observability.Current().StartDBCollector(bg, log, storage.GormDB)

	clients, err := wireClients(bg, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	serviceset, err := wireServices(log, cfg, clients, storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = serviceset

	checks := map[string]httpH.Pinger{}
	for name, p := range storage.Checks {
		checks[name] = p
	}
	for name, p := range clients.checks {
		checks[name] = p
	}
	handlerset := wireHandlers(log, serviceset, checks)
	middleware := wireMiddleware(log, serviceset)
	a.Router = wireRouter(log, cfg, handlerset, middleware)
	return a, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("HTTP server listening", "addr", addr)
	server := &apphttp.Server{Engine: a.Router}
	return server.Run(ctx, addr, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients != nil && a.Clients.CacheBackend != nil {
		if err := a.Clients.CacheBackend.Close(); err != nil {
			a.Log.Warn("Answer cache close failed", "error", err)
		}
		a.Clients.CacheBackend = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Log.Warn("Storage close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
