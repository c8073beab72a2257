package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// ContextKeySessionID is set by chat handlers so the access log can carry the
// (hashed) chat session.
const ContextKeySessionID = "chat_session_id"

var quietPaths = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one access log line per request. Streaming chat
// responses are logged once the stream has ended.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "AccessLog")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if uid := ctxutil.UserID(c.Request.Context()); uid != "" {
			fields = append(fields, "user_id", uid)
		}
		if sid, ok := c.Get(ContextKeySessionID); ok {
			fields = append(fields, "session_id", sid)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietPaths[path]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
