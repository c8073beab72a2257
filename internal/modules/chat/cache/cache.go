package cache

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

// Backend is a TTL key-value store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// DefaultTTLs are the answer lifetimes per mode.
var DefaultTTLs = map[modes.Mode]time.Duration{
	modes.Admission:      2 * time.Hour,
	modes.StudentSupport: time.Hour,
	modes.WebSearch:      30 * time.Minute,
}

type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Errors int64 `json:"errors"`
}

// AnswerCache stores final answers keyed by mode and normalised question.
// A nil backend disables caching; every lookup is then a silent miss.
type AnswerCache struct {
	log     *logger.Logger
	backend Backend
	ttls    map[modes.Mode]time.Duration

	hits, misses, sets, errs atomic.Int64
}

func NewAnswerCache(log *logger.Logger, backend Backend, ttls map[modes.Mode]time.Duration) *AnswerCache {
	if ttls == nil {
		ttls = DefaultTTLs
	}
	return &AnswerCache{log: log.With("component", "AnswerCache"), backend: backend, ttls: ttls}
}

func (c *AnswerCache) Enabled() bool { return c != nil && c.backend != nil }

var spaceRunRe = regexp.MustCompile(`\s+`)

// Key is "mode:" plus the NFC, lower-cased, trimmed and whitespace-collapsed
// message.
func Key(mode modes.Mode, message string) string {
	m := norm.NFC.String(message)
	m = strings.ToLower(strings.TrimSpace(m))
	m = spaceRunRe.ReplaceAllString(m, " ")
	return string(mode) + ":" + m
}

func (c *AnswerCache) Get(ctx context.Context, mode modes.Mode, message string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	val, ok, err := c.backend.Get(ctx, Key(mode, message))
	if err != nil {
		c.errs.Add(1)
		c.log.Warn("answer cache get failed", "mode", mode, "error", err)
		return "", false
	}
	if !ok {
		c.misses.Add(1)
		observability.Current().IncAnswerCache(string(mode), "miss")
		return "", false
	}
	c.hits.Add(1)
	observability.Current().IncAnswerCache(string(mode), "hit")
	return val, true
}

func (c *AnswerCache) Set(ctx context.Context, mode modes.Mode, message, answer string) {
	if !c.Enabled() || strings.TrimSpace(answer) == "" {
		return
	}
	ttl, ok := c.ttls[mode]
	if !ok || ttl <= 0 {
		return
	}
	if err := c.backend.Set(ctx, Key(mode, message), answer, ttl); err != nil {
		c.errs.Add(1)
		c.log.Warn("answer cache set failed", "mode", mode, "error", err)
		return
	}
	c.sets.Add(1)
	observability.Current().IncAnswerCache(string(mode), "set")
}

func (c *AnswerCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Errors: c.errs.Load(),
	}
}

func (c *AnswerCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.backend.Close()
}
