// Package metrics exposes Prometheus counters for the gating core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
type Collector struct {
	gateDecisions      *prometheus.CounterVec
	profileCache       *prometheus.CounterVec
	sessionTransitions *prometheus.CounterVec
	profileSyncs       *prometheus.CounterVec
	tutorRequests      *prometheus.CounterVec
	gatherer           prometheus.Gatherer
}

// NewCollector creates a Collector and registers it with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sokrate_gate_decisions_total",
			Help: "Route gate decisions by route, decision and redirect target",
		}, []string{"route", "decision", "target"}),
		profileCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sokrate_profile_cache_events_total",
			Help: "Profile cache lookups by result (hit, miss, fetch, error)",
		}, []string{"result"}),
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sokrate_session_transitions_total",
			Help: "Session state transitions",
		}, []string{"from", "to"}),
		profileSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sokrate_profile_syncs_total",
			Help: "Background profile upserts after sign-in by outcome",
		}, []string{"outcome"}),
		tutorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sokrate_tutor_requests_total",
			Help: "AI tutor requests by tool and outcome",
		}, []string{"tool", "outcome"}),
		gatherer: reg,
	}
	reg.MustRegister(c.gateDecisions, c.profileCache, c.sessionTransitions, c.profileSyncs, c.tutorRequests)
	return c
}

// RecordGateDecision counts one gate outcome.
func (c *Collector) RecordGateDecision(route, decision, target string) {
	c.gateDecisions.WithLabelValues(route, decision, target).Inc()
}

// RecordProfileCache counts one profile cache event.
func (c *Collector) RecordProfileCache(result string) {
	c.profileCache.WithLabelValues(result).Inc()
}

// RecordSessionTransition counts one session state change.
func (c *Collector) RecordSessionTransition(from, to string) {
	c.sessionTransitions.WithLabelValues(from, to).Inc()
}

// RecordProfileSync counts one background profile upsert.
func (c *Collector) RecordProfileSync(outcome string) {
	c.profileSyncs.WithLabelValues(outcome).Inc()
}

// RecordTutorRequest counts one AI tutor call.
func (c *Collector) RecordTutorRequest(tool, outcome string) {
	c.tutorRequests.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
