package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchspec",
			Subsystem: "spec",
			Name:      "validations_total",
			Help:      "Number of spec validations by result.",
		}, []string{"result"},
	)
	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchspec",
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Number of specs registered or updated.",
		}, []string{"name"},
	)
	deletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchspec",
			Subsystem: "registry",
			Name:      "deletions_total",
			Help:      "Number of specs deleted.",
		}, []string{"name"},
	)
	renders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchspec",
			Subsystem: "render",
			Name:      "renders_total",
			Help:      "Number of renders by output format.",
		}, []string{"format"},
	)
	storedSpecs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "launchspec",
			Subsystem: "registry",
			Name:      "stored_specs",
			Help:      "Current number of specs in the registry.",
		},
	)
	historySendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "launchspec",
			Subsystem: "history",
			Name:      "send_failures_total",
			Help:      "Number of audit events that could not be delivered to a sink.",
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{validations, registrations, deletions, renders, storedSpecs, historySendFailures}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncValidation(ok bool) {
	if regOK.Load() {
		result := "ok"
		if !ok {
			result = "invalid"
		}
		validations.WithLabelValues(result).Inc()
	}
}

func IncRegistration(name string) {
	if regOK.Load() {
		registrations.WithLabelValues(name).Inc()
	}
}

func IncDeletion(name string) {
	if regOK.Load() {
		deletions.WithLabelValues(name).Inc()
	}
}

func IncRender(format string) {
	if regOK.Load() {
		renders.WithLabelValues(format).Inc()
	}
}

func SetStoredSpecs(n int) {
	if regOK.Load() {
		storedSpecs.Set(float64(n))
	}
}

func IncHistorySendFailure() {
	if regOK.Load() {
		historySendFailures.Inc()
	}
}
