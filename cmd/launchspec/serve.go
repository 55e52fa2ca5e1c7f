package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/minerops/launchspec/internal/config"
	"github.com/minerops/launchspec/internal/history"
	"github.com/minerops/launchspec/internal/logger"
	"github.com/minerops/launchspec/internal/metrics"
	"github.com/minerops/launchspec/internal/server"
	"github.com/minerops/launchspec/internal/store"
)

const (
	defaultListen   = ":8080"
	defaultBasePath = "/api"
	defaultStoreDSN = "launchspec.db"
)

// resolveServeConfig merges the config file with command-line overrides.
func resolveServeConfig(f ServeFlags) (listen, basePath, storeDSN, historyDSN string, err error) {
	listen, basePath, storeDSN = defaultListen, defaultBasePath, defaultStoreDSN

	if f.ConfigPath != "" {
		cfg, err := config.Load(f.ConfigPath)
		if err != nil {
			return "", "", "", "", err
		}
		if cfg.Server.Listen != "" {
			listen = cfg.Server.Listen
		}
		if cfg.Server.BasePath != "" {
			basePath = cfg.Server.BasePath
		}
		if cfg.StoreDSN != "" {
			storeDSN = cfg.StoreDSN
		}
		historyDSN = cfg.HistoryDSN
	}

	if f.Listen != "" {
		listen = f.Listen
	}
	if f.BasePath != "" {
		basePath = f.BasePath
	}
	if f.StoreDSN != "" {
		storeDSN = f.StoreDSN
	}
	if f.HistoryDSN != "" {
		historyDSN = f.HistoryDSN
	}
	return listen, basePath, storeDSN, historyDSN, nil
}

// Serve runs the registry HTTP server until SIGINT/SIGTERM.
func runServe(f ServeFlags) error {
	listen, basePath, storeDSN, historyDSN, err := resolveServeConfig(f)
	if err != nil {
		return err
	}

	log := logger.NewCLILogger(slog.LevelInfo, true)

	st, err := store.NewFromDSN(storeDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	var sink history.Sink
	if historyDSN != "" {
		sink, err = history.NewSinkFromDSN(historyDSN)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		defer func() {
			if closer, ok := sink.(io.Closer); ok {
				_ = closer.Close()
			}
		}()
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if n, err := st.Count(context.Background()); err == nil {
		metrics.SetStoredSpecs(n)
	}

	srv, err := server.NewServer(listen, basePath, st, sink, log)
	if err != nil {
		return err
	}
	log.Info("registry server started", "listen", listen, "base_path", basePath, "store", storeDSN)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// createServeCommand creates the serve subcommand
func createServeCommand(flags *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the spec registry HTTP server",
		Long: `Run the registry HTTP server: spec validation, storage with revision
history, and rendering over a JSON API, plus Prometheus metrics.

Examples:
  launchspec serve --config=launchspec.toml
  launchspec serve --listen=:9090 --store=postgres://user:pass@db/specs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.ConfigPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&flags.Listen, "listen", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&flags.BasePath, "base-path", "", "API base path (default /api)")
	cmd.Flags().StringVar(&flags.StoreDSN, "store", "", "registry store DSN (sqlite path or postgres://)")
	cmd.Flags().StringVar(&flags.HistoryDSN, "history", "", "audit sink DSN (sqlite, postgres://, clickhouse://, opensearch://)")
	return cmd
}
