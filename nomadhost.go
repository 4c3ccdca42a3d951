package nomadhost

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/neuralnomads/nomadhost/internal/config"
	"github.com/neuralnomads/nomadhost/internal/events"
	"github.com/neuralnomads/nomadhost/internal/history"
	"github.com/neuralnomads/nomadhost/internal/history/factory"
	"github.com/neuralnomads/nomadhost/internal/logger"
	"github.com/neuralnomads/nomadhost/internal/metrics"
	"github.com/neuralnomads/nomadhost/internal/navigation"
	iapi "github.com/neuralnomads/nomadhost/internal/server"
	"github.com/neuralnomads/nomadhost/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Status = supervisor.Status

type State = supervisor.State

const (
	StateStarting = supervisor.StateStarting
	StateReady    = supervisor.StateReady
	StateError    = supervisor.StateError
	StateStopped  = supervisor.StateStopped
)

type Options = supervisor.Options

type Launcher = supervisor.Launcher

type Emitter = events.Emitter

type EmitterFunc = events.Func

type Bus = events.Bus

type Navigator = navigation.Navigator

type NavigatorFunc = navigation.Func

type HistorySink = history.Sink

type CaptureConfig = logger.Config

// Event names delivered through the Emitter and the event stream.
const (
	EventStatus = events.EventStatus
	EventError  = events.EventError
	EventReady  = events.EventReady
)

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.

type Supervisor struct{ inner *supervisor.Supervisor }

func New(opts Options) *Supervisor {
	return &Supervisor{inner: supervisor.New(opts)}
}

func (s *Supervisor) Start(dev bool)          { s.inner.Start(dev) }
func (s *Supervisor) Stop()                   { s.inner.Stop() }
func (s *Supervisor) Restart(dev bool) Status { return s.inner.Restart(dev) }
func (s *Supervisor) Status() Status          { return s.inner.Status() }
func (s *Supervisor) Dev() bool               { return s.inner.Dev() }

// NewBus creates a fan-out emitter feeding the HTTP event stream.
func NewBus() *Bus { return events.NewBus() }

// MultiEmitter fans events out to several emitters in order.
func MultiEmitter(es ...Emitter) Emitter { return events.Multi(es) }

// SlogEmitter logs every event through the given logger.
func SlogEmitter(l *slog.Logger) Emitter { return events.Slog{Logger: l} }

// NewLogger builds the colored text slog logger used by the daemon.
func NewLogger(level slog.Level) *slog.Logger { return logger.New(level) }

// NewHistorySink builds a lifecycle history sink from a DSN
// (clickhouse://, postgres://, sqlite:// or a plain file path).
func NewHistorySink(dsn string) (HistorySink, error) {
	return factory.NewSinkFromDSN(dsn)
}

// ConfigPath returns the CodeNomad config file location, honoring the
// CLI_CONFIG override.
func ConfigPath() string { return config.Path() }

// HTTPHandler returns the control API handler for mounting into an
// existing server or mux. The bus may be nil to omit the event stream;
// withMetrics mounts the prometheus endpoint.
func HTTPHandler(s *Supervisor, bus *Bus, basePath string, withMetrics bool) http.Handler {
	r := iapi.NewRouter(s.inner, bus, basePath)
	if withMetrics {
		r.EnableMetrics()
	}
	return r.Handler()
}

// NewHTTPServer starts an HTTP server exposing the control API.
func NewHTTPServer(addr, basePath string, s *Supervisor, bus *Bus, withMetrics bool) *http.Server {
	r := iapi.NewRouter(s.inner, bus, basePath)
	if withMetrics {
		r.EnableMetrics()
	}
	return iapi.NewServer(addr, r)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using
// the default registry. It returns any immediate listen error;
// otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
