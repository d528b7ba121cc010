// Package metrics exposes member service counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dues"

// Metrics implements services.Recorder.
type Metrics struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	persistErrors prometheus.Counter
	activeMembers prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Member mutations applied, by operation.",
		}, []string{"operation"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Requests rejected by input validation, by operation.",
		}, []string{"operation"}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Snapshot saves that failed; in-memory state was kept.",
		}),
		activeMembers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_members",
			Help:      "Members currently marked active.",
		}),
	}

	m.registry.MustRegister(
		m.mutations,
		m.rejections,
		m.persistErrors,
		m.activeMembers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) MutationApplied(op string)    { m.mutations.WithLabelValues(op).Inc() }
func (m *Metrics) ValidationRejected(op string) { m.rejections.WithLabelValues(op).Inc() }
func (m *Metrics) PersistFailed()               { m.persistErrors.Inc() }
func (m *Metrics) ActiveMembers(n int)          { m.activeMembers.Set(float64(n)) }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
