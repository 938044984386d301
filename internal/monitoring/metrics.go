// Package monitoring exposes Prometheus metrics for the export pipeline.
//
// Metrics register against a caller-supplied Registerer so multiple
// exporter instances in one process (or one test binary) never collide.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	TracesCreated  prometheus.Counter
	SpansCreated   *prometheus.CounterVec // mode: batch|individual
	SpansUpdated   prometheus.Counter
	SpansDeduped   prometheus.Counter
	ExportErrors   *prometheus.CounterVec // operation
	BatchFallbacks prometheus.Counter
	CacheHits      *prometheus.CounterVec // cache: traces|spans
	CacheMisses    *prometheus.CounterVec // cache: traces|spans
}

// New creates pipeline metrics registered against reg. A nil reg gets a
// private registry, keeping the collectors live but unexported.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		TracesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "agentlens_traces_created_total",
			Help: "Traces created on the backend",
		}),
		SpansCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentlens_spans_created_total",
			Help: "Spans created on the backend",
		}, []string{"mode"}),
		SpansUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "agentlens_spans_updated_total",
			Help: "Completion updates delivered for terminal spans",
		}),
		SpansDeduped: factory.NewCounter(prometheus.CounterOpts{
			Name: "agentlens_spans_deduped_total",
			Help: "Spans skipped because they were already exported",
		}),
		ExportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentlens_export_errors_total",
			Help: "Backend operations that failed during export",
		}, []string{"operation"}),
		BatchFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "agentlens_batch_fallbacks_total",
			Help: "Batch submissions that fell back to individual creates",
		}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentlens_cache_hits_total",
			Help: "Identity cache hits",
		}, []string{"cache"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentlens_cache_misses_total",
			Help: "Identity cache misses",
		}, []string{"cache"}),
	}
}
