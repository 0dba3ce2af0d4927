package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// Metrics is the service's Prometheus surface. All methods are nil-safe so callers can
// hold a nil *Metrics when metrics are disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	aggregateOps *prometheus.HistogramVec
	aggConflicts *prometheus.CounterVec
	aggRetries   *prometheus.CounterVec
	catalogCache *prometheus.CounterVec
	attachLinks  *prometheus.CounterVec
	eventsOut    *prometheus.CounterVec
	storageBoot  *prometheus.CounterVec
	historyRows  *prometheus.HistogramVec
	dbStats      *prometheus.GaugeVec
	redisUp      prometheus.Gauge
	redisPing    prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. It returns nil when disabled.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
	})
	return instance
}

// NewMetrics registers every collector on reg. Tests pass a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pp_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pp_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		aggregateOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pp_aggregate_operation_duration_seconds",
			Help:    "Aggregate write latency by operation/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation", "status"}),
		aggConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_aggregate_conflicts_total",
			Help: "Aggregate writes rejected by a version or uniqueness conflict.",
		}, []string{"operation"}),
		aggRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_aggregate_retryable_total",
			Help: "Aggregate writes that failed with a retryable error.",
		}, []string{"operation"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_catalog_cache_total",
			Help: "Catalog cache lookups by layer/result.",
		}, []string{"layer", "result"}),
		attachLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_attachment_link_total",
			Help: "Attachment upload outcomes.",
		}, []string{"status"}),
		eventsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_change_events_total",
			Help: "Change events published by result.",
		}, []string{"result"}),
		historyRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pp_history_rows_per_write",
			Help:    "Audit rows written per committed production request write.",
			Buckets: []float64{1, 2, 5, 10, 20, 40},
		}, []string{"operation"}),
		storageBoot: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pp_object_storage_bootstrap_total",
			Help: "Object storage provider bootstrap attempts by mode/result/error code.",
		}, []string{"mode", "result", "code"}),
		dbStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pp_db_pool",
			Help: "database/sql pool stats.",
		}, []string{"stat"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pp_redis_up",
			Help: "1 when the last Redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pp_redis_ping_seconds",
			Help: "Latency of the last Redis ping.",
		}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.aggregateOps,
		m.aggConflicts,
		m.aggRetries,
		m.catalogCache,
		m.attachLinks,
		m.eventsOut,
		m.storageBoot,
		m.historyRows,
		m.dbStats,
		m.redisUp,
		m.redisPing,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
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

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(orUnknown(name), orUnknown(status)).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggConflicts.WithLabelValues(orUnknown(name)).Inc()
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggRetries.WithLabelValues(orUnknown(name)).Inc()
}

// IncCatalogCache records a lookup; layer is "memory" or "redis", result "hit" or "miss".
func (m *Metrics) IncCatalogCache(layer, result string) {
	if m == nil {
		return
	}
	m.catalogCache.WithLabelValues(orUnknown(layer), orUnknown(result)).Inc()
}

func (m *Metrics) IncAttachmentLink(status string) {
	if m == nil {
		return
	}
	m.attachLinks.WithLabelValues(orUnknown(status)).Inc()
}

func (m *Metrics) IncChangeEvent(result string) {
	if m == nil {
		return
	}
	m.eventsOut.WithLabelValues(orUnknown(result)).Inc()
}

func (m *Metrics) ObserveHistoryRows(op string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.historyRows.WithLabelValues(orUnknown(op)).Observe(float64(rows))
}

func (m *Metrics) ObserveObjectStorageBootstrap(mode, result, code string) {
	if m == nil {
		return
	}
	m.storageBoot.WithLabelValues(orUnknown(mode), orUnknown(result), orUnknown(code)).Inc()
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
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
				m.dbStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
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
