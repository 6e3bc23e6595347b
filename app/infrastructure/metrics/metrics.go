package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the gateway, registered on a
// private registry so the exposition contains only what we emit.
type Metrics struct {
	registry *prometheus.Registry

	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	UpstreamCallsTotal *prometheus.CounterVec

	RateLimitRejectionsTotal *prometheus.CounterVec

	ReservoirLevel prometheus.Gauge
}

// New creates and registers all gateway metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_gateway_tool_calls_total",
			Help: "Total number of tool invocations.",
		}, []string{"tool", "status"}),

		ToolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ads_gateway_tool_call_duration_seconds",
			Help:    "Tool invocation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),

		CacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_gateway_cache_hits_total",
			Help: "Total number of tool results served from cache.",
		}, []string{"tool"}),

		CacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_gateway_cache_misses_total",
			Help: "Total number of tool results computed on a cache miss.",
		}, []string{"tool"}),

		UpstreamCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_gateway_upstream_calls_total",
			Help: "Total number of calls to the advertising platform API.",
		}, []string{"endpoint", "status"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_gateway_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}, []string{"scope"}),

		ReservoirLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ads_gateway_reservoir_level",
			Help: "Remaining units in the outbound reservoir.",
		}),
	}

	reg.MustRegister(
		m.ToolCallsTotal,
		m.ToolCallDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.UpstreamCallsTotal,
		m.RateLimitRejectionsTotal,
		m.ReservoirLevel,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
