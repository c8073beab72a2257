package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/myu-chat-backend/internal/http/handlers"
	httpMW "github.com/yungbote/myu-chat-backend/internal/http/middleware"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Metrics     *observability.Metrics
	CORSOrigins []string

	GlobalRateLimit httpMW.RateLimitConfig
	ChatRateLimit   httpMW.RateLimitConfig

	AuthMiddleware *httpMW.AuthMiddleware
	ChatHandler    *httpH.ChatHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.RateLimit(cfg.GlobalRateLimit))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	chat := r.Group("/v1/api/chat")
	{
		chat.Use(httpMW.RateLimit(cfg.ChatRateLimit))
		if cfg.AuthMiddleware != nil {
			chat.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.ChatHandler != nil {
			chat.GET("/modes", cfg.ChatHandler.ListModes)
			chat.POST("", cfg.ChatHandler.Chat)
			chat.POST("/", cfg.ChatHandler.Chat)
			chat.POST("/web-search", cfg.ChatHandler.WebSearch)
			chat.POST("/conversation", cfg.ChatHandler.CreateConversation)
			chat.GET("/conversations", cfg.ChatHandler.ListConversations)
			chat.GET("/history/:sessionId", cfg.ChatHandler.GetHistory)
			chat.POST("/clear", cfg.ChatHandler.ClearHistory)
		}
	}

	return r
}
