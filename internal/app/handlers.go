package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/myu-chat-backend/internal/http"
	httpH "github.com/yungbote/myu-chat-backend/internal/http/handlers"
	httpMW "github.com/yungbote/myu-chat-backend/internal/http/middleware"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Chat   *httpH.ChatHandler
}

func wireHandlers(log *logger.Logger, services Services, checks map[string]httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(checks),
		Chat:   httpH.NewChatHandler(log, services.Chat),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func rateLimits(cfg Config) (global, chat httpMW.RateLimitConfig) {
	global, chat = httpMW.GlobalRateLimit, httpMW.ChatRateLimit
	global.Max = cfg.GlobalRatePer15m
	chat.Max = cfg.ChatRatePerMin
	return global, chat
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	global, chat := rateLimits(cfg)
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		Metrics:         observability.Current(),
		CORSOrigins:     cfg.CORSOrigins,
		GlobalRateLimit: global,
		ChatRateLimit:   chat,
		AuthMiddleware:  middleware.Auth,
		ChatHandler:     handlers.Chat,
		HealthHandler:   handlers.Health,
	})
}
