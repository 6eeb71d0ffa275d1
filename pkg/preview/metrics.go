package preview

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records compilation outcomes on a private registry.
type Metrics struct {
	reg          *prom.Registry
	compilations *prom.CounterVec
	duration     prom.Histogram
	docBytes     prom.Histogram
}

// NewMetrics registers the compiler metrics on reg, or on a fresh registry
// when reg is nil.
func NewMetrics(reg *prom.Registry) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		compilations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lolc",
			Name:      "compilations_total",
			Help:      "Compilations by result (ok, lexical, syntax, semantic, error)",
		}, []string{"result"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "lolc",
			Name:      "compile_duration_seconds",
			Help:      "Time spent compiling one source",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
		}),
		docBytes: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "lolc",
			Name:      "document_bytes",
			Help:      "Size of successfully compiled documents",
			Buckets:   prom.ExponentialBuckets(256, 4, 8),
		}),
	}
	reg.MustRegister(m.compilations, m.duration, m.docBytes)
	return m
}

// Observe records one compilation. docBytes is ignored unless result is "ok".
func (m *Metrics) Observe(result string, d time.Duration, docBytes int) {
	if m == nil {
		return
	}
	m.compilations.WithLabelValues(result).Inc()
	m.duration.Observe(d.Seconds())
	if result == resultOK {
		m.docBytes.Observe(float64(docBytes))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
