// Package metrics exposes Prometheus counters for the engine channel and
// the reclamation batch. A reclamation run over a large catalog can take a
// long time; the optional listener lets an operator watch it progress.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tool's metric instruments. A nil *Metrics is valid and
// records nothing, so callers never need to guard.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests     *prometheus.CounterVec
	reclaimAttempts prometheus.Counter
	reclaimFailures prometheus.Counter
	candidateMB  prometheus.Gauge
}

// New creates the instruments on their own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sweeper",
			Subsystem: "engine",
			Name:      "rpc_requests_total",
			Help:      "Engine RPC exchanges by method and outcome.",
		}, []string{"method", "outcome"}),
		reclaimAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweeper",
			Name:      "reclaim_attempts_total",
			Help:      "Reclamation attempts.",
		}),
		reclaimFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweeper",
			Name:      "reclaim_failures_total",
			Help:      "Reclamation attempts that failed.",
		}),
		candidateMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sweeper",
			Name:      "candidate_megabytes",
			Help:      "Total size of the current candidate list in megabytes.",
		}),
	}

	registry.MustRegister(m.rpcRequests, m.reclaimAttempts, m.reclaimFailures, m.candidateMB)
	return m
}

// ObserveRPC records one RPC exchange. Matches the engine client's observer
// signature.
func (m *Metrics) ObserveRPC(method string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
}

// ObserveReclaim records one reclamation outcome.
func (m *Metrics) ObserveReclaim(reclaimed bool) {
	if m == nil {
		return
	}
	m.reclaimAttempts.Inc()
	if !reclaimed {
		m.reclaimFailures.Inc()
	}
}

// SetCandidateMB publishes the evaluated candidate list's total size.
func (m *Metrics) SetCandidateMB(totalMB float64) {
	if m == nil {
		return
	}
	m.candidateMB.Set(totalMB)
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts the scrape endpoint on addr in the background. The server
// lives for the remainder of the process; a one-shot tool has no teardown
// path that needs it stopped sooner.
func (m *Metrics) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
