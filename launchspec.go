// Package launchspec is a toolkit for declarative process launch
// specifications: parsing, validation, environment composition, rendering to
// supervisor config formats, and a registry with revision history.
//
// It describes how worker processes should be launched and supervised; it is
// not a supervisor itself.
package launchspec

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/minerops/launchspec/internal/config"
	"github.com/minerops/launchspec/internal/history"
	"github.com/minerops/launchspec/internal/logger"
	"github.com/minerops/launchspec/internal/metrics"
	"github.com/minerops/launchspec/internal/render"
	iapi "github.com/minerops/launchspec/internal/server"
	"github.com/minerops/launchspec/internal/spec"
	"github.com/minerops/launchspec/internal/store"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = spec.Spec

type Duration = spec.Duration

type Size = spec.Size

type Violation = spec.Violation

type ValidationError = spec.ValidationError

type Config = cfg.Config

type LogConfig = logger.Config

type Record = store.Record

type Revision = store.Revision

type Store = store.Store

type HistoryEvent = history.Event

type HistorySink = history.Sink

// ParseDuration parses either a bare integer (milliseconds) or a Go duration
// string like "1500ms".
func ParseDuration(s string) (Duration, error) { return spec.ParseDuration(s) }

// ParseSize parses a human byte size like "300M", "1G" or a bare byte count.
func ParseSize(s string) (Size, error) { return spec.ParseSize(s) }

// LoadConfig reads a TOML/JSON/YAML config file with global env, store DSNs
// and spec definitions.
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// LoadSpecs reads and normalizes the specs from a config file.
func LoadSpecs(path string) ([]Spec, error) { return cfg.LoadSpecs(path) }

// LoadSpec reads a file defining exactly one spec, either as a config file
// with a single [[specs]] entry or as a bare spec document.
func LoadSpec(path string) (Spec, error) { return cfg.LoadSpec(path) }

// RenderPM2 renders specs into a PM2 ecosystem JSON document.
func RenderPM2(specs []Spec) ([]byte, error) { return render.PM2(specs) }

// RenderSupervisord renders specs into a supervisord program INI document.
func RenderSupervisord(specs []Spec) ([]byte, error) { return render.Supervisord(specs) }

// NewStore opens a spec registry store. Supports sqlite paths and
// postgres:// DSNs.
func NewStore(dsn string) (Store, error) { return store.NewFromDSN(dsn) }

// NewHistorySink opens an audit sink. Supports sqlite, postgres://,
// clickhouse:// and opensearch:// DSNs.
func NewHistorySink(dsn string) (HistorySink, error) { return history.NewSinkFromDSN(dsn) }

// NewRouterHandler returns an http.Handler serving the registry API, for
// mounting into an existing server or mux.
func NewRouterHandler(st Store, sink HistorySink, logger *slog.Logger, basePath string) http.Handler {
	return iapi.NewRouter(st, sink, logger, basePath).Handler()
}

// NewHTTPServer starts an HTTP server exposing the registry API.
func NewHTTPServer(addr, basePath string, st Store, sink HistorySink, logger *slog.Logger) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, st, sink, logger)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
