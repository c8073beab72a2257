package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	chatTurns      *prometheus.CounterVec
	retrieval      *prometheus.HistogramVec
	webSearch      *prometheus.CounterVec
	answerCache    *prometheus.CounterVec
	storeFallbacks *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec

	vectorOps       *prometheus.HistogramVec
	vectorProvider  *prometheus.GaugeVec
	vectorBootstrap *prometheus.CounterVec

	dbStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second)
}

// Init builds the process-wide metrics registry when METRICS_ENABLED is set.
// It returns nil otherwise; every method is nil-safe.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myu_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "myu_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_llm_requests_total",
			Help: "LLM requests by provider/model/operation/status.",
		}, []string{"provider", "model", "operation", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myu_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds by provider/model/operation.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "model", "operation"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_llm_tokens_estimated_total",
			Help: "Estimated LLM tokens by model/direction.",
		}, []string{"model", "direction"}),
		chatTurns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_chat_turns_total",
			Help: "Chat turns by mode/path/status.",
		}, []string{"mode", "path", "status"}),
		retrieval: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myu_retrieval_duration_seconds",
			Help:    "Retrieval gate latency by mode/outcome.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"mode", "outcome"}),
		webSearch: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_web_search_total",
			Help: "Web search calls by provider/status.",
		}, []string{"provider", "status"}),
		answerCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_answer_cache_total",
			Help: "Answer cache lookups and writes by mode/result.",
		}, []string{"mode", "result"}),
		storeFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_store_fallback_total",
			Help: "Conversation store operations served by the volatile fallback.",
		}, []string{"op"}),
		rateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_rate_limited_total",
			Help: "Requests rejected by the rate limiter by scope.",
		}, []string{"scope"}),
		vectorOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myu_vector_store_operation_duration_seconds",
			Help:    "Vector store operation latency by provider/operation/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"provider", "operation", "status"}),
		vectorProvider: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "myu_vector_store_provider_active",
			Help: "Active vector store provider (1 for the selected one).",
		}, []string{"provider"}),
		vectorBootstrap: f.NewCounterVec(prometheus.CounterOpts{
			Name: "myu_vector_store_bootstrap_total",
			Help: "Vector store bootstrap attempts by provider/status/code.",
		}, []string{"provider", "status", "code"}),
		dbStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "myu_db_stats",
			Help: "SQL connection pool stats.",
		}, []string{"metric"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "myu_redis_up",
			Help: "Redis connectivity (1=up, 0=down).",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Name: "myu_redis_ping_seconds",
			Help: "Redis ping latency in seconds.",
		}),
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	method, route = orUnknown(method), orUnknown(route)
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(provider, model, operation, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	provider, model, operation = orUnknown(provider), orUnknown(model), orUnknown(operation)
	m.llmRequests.WithLabelValues(provider, model, operation, orUnknown(status)).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(provider, model, operation).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) IncChatTurn(mode, path, status string) {
	if m == nil {
		return
	}
	m.chatTurns.WithLabelValues(orUnknown(mode), orUnknown(path), orUnknown(status)).Inc()
}

func (m *Metrics) ObserveRetrieval(mode, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.retrieval.WithLabelValues(orUnknown(mode), orUnknown(outcome)).Observe(dur.Seconds())
}

func (m *Metrics) IncWebSearch(provider, status string) {
	if m == nil {
		return
	}
	m.webSearch.WithLabelValues(orUnknown(provider), orUnknown(status)).Inc()
}

func (m *Metrics) IncAnswerCache(mode, result string) {
	if m == nil {
		return
	}
	m.answerCache.WithLabelValues(orUnknown(mode), orUnknown(result)).Inc()
}

func (m *Metrics) IncStoreFallback(op string) {
	if m == nil {
		return
	}
	m.storeFallbacks.WithLabelValues(orUnknown(op)).Inc()
}

func (m *Metrics) IncRateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(orUnknown(scope)).Inc()
}

func (m *Metrics) ObserveVectorStoreOperation(provider, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.vectorOps.WithLabelValues(orUnknown(provider), orUnknown(operation), orUnknown(status)).Observe(dur.Seconds())
}

func (m *Metrics) SetVectorStoreProviderActive(provider string) {
	if m == nil {
		return
	}
	m.vectorProvider.Reset()
	m.vectorProvider.WithLabelValues(orUnknown(provider)).Set(1)
}

func (m *Metrics) ObserveVectorStoreBootstrap(provider, status, code string) {
	if m == nil {
		return
	}
	m.vectorBootstrap.WithLabelValues(orUnknown(provider), orUnknown(status), orUnknown(code)).Inc()
}

// StartDBCollector samples the gorm connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
			}
		}
	}()
}

// StartRedisCollector pings rdb on every scrape interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
