package observability

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// Metrics is nil when METRICS_ENABLED is off; every method is nil-safe.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	llmRequests  *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec
	llmTokens    *prometheus.CounterVec
	auditRuns    *prometheus.CounterVec
	brandUpserts *prometheus.CounterVec
	scheduled    *prometheus.GaugeVec
	lockRejected prometheus.Counter
}

func Enabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("METRICS_ENABLED")))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	m := New()
	if log != nil {
		log.Info("prometheus metrics enabled")
	}
	return m
}

// New builds a Metrics with its own registry, so tests can create several.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bl_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bl_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "bl_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bl_llm_requests_total",
			Help: "LLM calls by backend, stage and outcome.",
		}, []string{"backend", "stage", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bl_llm_request_duration_seconds",
			Help:    "LLM call latency in seconds by backend and stage.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 45, 60, 120},
		}, []string{"backend", "stage"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bl_llm_tokens_total",
			Help: "LLM tokens consumed by backend and kind.",
		}, []string{"backend", "kind"}),
		auditRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bl_audit_runs_total",
			Help: "Audit cycles by trigger and final status.",
		}, []string{"trigger", "status"}),
		brandUpserts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bl_brand_upserts_total",
			Help: "Brand upserts by outcome (created, updated, failed).",
		}, []string{"outcome"}),
		scheduled: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bl_scheduled_jobs",
			Help: "Registered cron jobs by entity kind.",
		}, []string{"kind"}),
		lockRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "bl_audit_runs_rejected_in_progress_total",
			Help: "Audit runs rejected because the prompt already had a cycle in flight.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) DecInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	s := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, s).Inc()
	m.apiLatency.WithLabelValues(method, route, s).Observe(dur.Seconds())
}

func (m *Metrics) ObserveLLM(backend, stage, status string, dur time.Duration, promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(backend, stage, status).Inc()
	m.llmLatency.WithLabelValues(backend, stage).Observe(dur.Seconds())
	if promptTokens > 0 {
		m.llmTokens.WithLabelValues(backend, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokens.WithLabelValues(backend, "completion").Add(float64(completionTokens))
	}
}

func (m *Metrics) IncAuditRun(trigger, status string) {
	if m == nil {
		return
	}
	m.auditRuns.WithLabelValues(trigger, status).Inc()
}

func (m *Metrics) IncBrandUpsert(outcome string) {
	if m == nil {
		return
	}
	m.brandUpserts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetScheduledJobs(kind string, n int) {
	if m == nil {
		return
	}
	m.scheduled.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) IncRunRejected() {
	if m == nil {
		return
	}
	m.lockRejected.Inc()
}
