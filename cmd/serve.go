package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/boekenzolder/stackscan/internal/config"
	"github.com/boekenzolder/stackscan/internal/handlers"
	"github.com/boekenzolder/stackscan/internal/metrics"
	"github.com/boekenzolder/stackscan/internal/pipeline"
	"github.com/boekenzolder/stackscan/internal/session"
	"github.com/boekenzolder/stackscan/internal/store"
	"github.com/boekenzolder/stackscan/internal/store/csvstore"
	"github.com/boekenzolder/stackscan/internal/store/sqlitestore"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the inventory HTTP service",
		Long: `Starts the stackscan inventory service.

The service accepts stack photos, sends them to the configured vision
provider, and records the recognized books per session.`,
		Example: `  # Start with defaults (CSV backend, Gemini provider)
  stackscan serve

  # Start on a custom port with a config file
  stackscan serve --port 3000 --config stackscan.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			recordStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := recordStore.Close(); err != nil {
					slog.Error("Unable to close record store", "err", err)
				}
			}()

			provider, err := pipeline.ProviderFor(cfg.Provider)
			if err != nil {
				return err
			}

			m := metrics.NewMetrics()
			p, err := pipeline.New(pipeline.Options{
				Store:      recordStore,
				Provider:   provider,
				Metrics:    m,
				UploadsDir: cfg.UploadsDir,
				Model:      cfg.Model,
				Temp:       cfg.Temperature,
				CacheSize:  cfg.CacheSize,
			})
			if err != nil {
				return err
			}

			registry := session.NewRegistry(recordStore)
			handler := handlers.New(cfg, recordStore, registry, p)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/sessions", handler.HandleSessions)
			mux.HandleFunc("/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/process-stack", handler.HandleProcessStack)
			mux.HandleFunc("/books", handler.HandleBooks)
			mux.HandleFunc("/books/delete-by-location", handler.HandleDeleteByLocation)
			mux.HandleFunc("/download-export", handler.HandleDownloadExport)
			mux.HandleFunc("/bulk-plan", handler.HandleBulkPlan)
			mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Stackscan inventory service available", "addr", addr, "backend", cfg.Backend, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case "csv":
		return csvstore.Open(cfg.SessionsDir)
	case "sqlite":
		return sqlitestore.Open(cfg.SessionsDir)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
