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

	cliStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nomadhost",
			Subsystem: "cli",
			Name:      "starts_total",
			Help:      "Number of CLI start attempts.",
		},
	)
	cliReady = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nomadhost",
			Subsystem: "cli",
			Name:      "ready_total",
			Help:      "Number of successful readiness transitions.",
		},
	)
	cliStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nomadhost",
			Subsystem: "cli",
			Name:      "stops_total",
			Help:      "Number of stop requests (graceful or kill).",
		},
	)
	cliErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nomadhost",
			Subsystem: "cli",
			Name:      "errors_total",
			Help:      "Number of error transitions by reason.",
		}, []string{"reason"},
	)
	cliState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nomadhost",
			Subsystem: "cli",
			Name:      "state",
			Help:      "Current CLI state (1 = active state, 0 = inactive).",
		}, []string{"state"},
	)
	timeToReady = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "nomadhost",
			Subsystem: "cli",
			Name:      "time_to_ready_seconds",
			Help:      "Seconds between spawn and the readiness signal.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

// Error reasons used as the errors_total label.
const (
	ReasonResolve   = "resolve"
	ReasonSpawn     = "spawn"
	ReasonTimeout   = "timeout"
	ReasonEarlyExit = "early_exit"
)

// Register registers all collectors with the provided registerer.
// Safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{cliStarts, cliReady, cliStops, cliErrors, cliState, timeToReady}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
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

// Handler returns the /metrics HTTP handler for the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func IncStart()              { cliStarts.Inc() }
func IncReady()              { cliReady.Inc() }
func IncStop()               { cliStops.Inc() }
func IncError(reason string) { cliErrors.WithLabelValues(reason).Inc() }

func ObserveTimeToReady(s float64) { timeToReady.Observe(s) }

// SetState flips the state gauge so exactly the given state reads 1.
func SetState(state string) {
	for _, s := range []string{"starting", "ready", "error", "stopped"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		cliState.WithLabelValues(s).Set(v)
	}
}
