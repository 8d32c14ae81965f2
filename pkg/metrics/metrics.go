// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 缓存命中/未命中计数
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	// 缓存故障降级计数
	CacheFallbacksTotal prometheus.Counter

	// 业务指标
	ReviewsCreatedTotal     *prometheus.CounterVec
	DuplicateConflictsTotal prometheus.Counter
	AuditsRegisteredTotal   prometheus.Counter
	FraudsReportedTotal     prometheus.Counter

	registry *prometheus.Registry
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "cache_hits_total",
			Help:      "Total cache hits",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "cache_misses_total",
			Help:      "Total cache misses",
		}),
		CacheFallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "cache_fallbacks_total",
			Help:      "Total reads served directly from the store due to cache errors",
		}),
		ReviewsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "reviews_created_total",
			Help:      "Total reviews created, by type",
		}, []string{"tipo"}),
		DuplicateConflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "duplicate_conflicts_total",
			Help:      "Total review creations rejected as duplicates",
		}),
		AuditsRegisteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "audits_registered_total",
			Help:      "Total audit entries registered",
		}),
		FraudsReportedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraudreview",
			Subsystem: serviceName,
			Name:      "frauds_reported_total",
			Help:      "Total fraud reports filed",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheFallbacksTotal,
		m.ReviewsCreatedTotal,
		m.DuplicateConflictsTotal,
		m.AuditsRegisteredTotal,
		m.FraudsReportedTotal,
	)

	return m
}

// Handler 返回 /metrics 的 gin 处理函数
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
