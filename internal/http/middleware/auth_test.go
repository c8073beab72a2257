package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/services"
)

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	am := NewAuthMiddleware(log, services.NewAuthService(log, secret))
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()))
	})
	return r
}

func TestRequireAuthAttachesUser(t *testing.T) {
	r := newAuthRouter("test-secret")
	token, err := services.SignAccessToken("test-secret", "user-42", time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "user-42" {
		t.Fatalf("got=%d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r := newAuthRouter("test-secret")
	expired, _ := services.SignAccessToken("test-secret", "user-42", -time.Hour)
	forged, _ := services.SignAccessToken("other-secret", "user-42", time.Hour)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "required"},
		{"not bearer", "Basic abc", "required"},
		{"expired", "Bearer " + expired, "expired"},
		{"forged", "Bearer " + forged, "invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status: got=%d", rec.Code)
			}
			if !strings.Contains(strings.ToLower(rec.Body.String()), tc.want) {
				t.Fatalf("body: %q want substring %q", rec.Body.String(), tc.want)
			}
		})
	}
}
