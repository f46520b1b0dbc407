// Package metrics exposes Prometheus metrics for the favicon pipeline.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/domain/entity"
)

const namespace = "shelf"

// TierOutcome labels the result of one tier attempt.
type TierOutcome string

const (
	TierSuccess TierOutcome = "success"
	TierFailure TierOutcome = "failure"
)

// Recorder publishes favicon pipeline metrics. A nil Recorder is valid and
// records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	resolutions  *prometheus.CounterVec
	tierAttempts *prometheus.CounterVec
	tierLatency  *prometheus.HistogramVec
	evictions    prometheus.Counter
	cacheBytes   prometheus.Gauge
	cacheEntries prometheus.Gauge
}

var _ port.FaviconMetrics = (*Recorder)(nil)

// NewRecorder registers the favicon metrics on reg. When reg is nil a
// dedicated registry is created so tests can build recorders freely.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	r := &Recorder{
		gatherer: reg,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "favicon",
			Name:      "resolutions_total",
			Help:      "Favicon resolutions by the source that answered.",
		}, []string{"source"}),
		tierAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "favicon",
			Name:      "tier_attempts_total",
			Help:      "Network tier attempts by tier and outcome.",
		}, []string{"tier", "outcome"}),
		tierLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "favicon",
			Name:      "tier_duration_seconds",
			Help:      "Latency distribution of network tier attempts.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"tier"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "favicon",
			Name:      "cache_evictions_total",
			Help:      "Cache entries evicted to stay under the byte budget.",
		}),
		cacheBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "favicon",
			Name:      "cache_bytes",
			Help:      "Bytes held by the favicon cache.",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "favicon",
			Name:      "cache_entries",
			Help:      "Entries held by the favicon cache.",
		}),
	}

	reg.MustRegister(r.resolutions, r.tierAttempts, r.tierLatency, r.evictions, r.cacheBytes, r.cacheEntries)
	r.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return r
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying gatherer.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

func (r *Recorder) ObserveResolution(source entity.IconSource) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(normalizeLabel(string(source))).Inc()
}

func (r *Recorder) ObserveTier(tier string, ok bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	outcome := TierFailure
	if ok {
		outcome = TierSuccess
	}
	tierLabel := normalizeLabel(tier)
	r.tierAttempts.WithLabelValues(tierLabel, string(outcome)).Inc()
	r.tierLatency.WithLabelValues(tierLabel).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveEvictions(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.evictions.Add(float64(n))
}

func (r *Recorder) SetCacheSize(entries, bytes int) {
	if r == nil {
		return
	}
	r.cacheEntries.Set(float64(entries))
	r.cacheBytes.Set(float64(bytes))
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
