package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/church-stats/attendance-cli/internal/store"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload and rate-query server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.NewSQLite(cfg.Snapshot.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		srv := &server{
			store:       st,
			reportsDir:  cfg.Reports.Dir,
			chartsDir:   cfg.Charts.Dir,
			defaultBase: cfg.Rates.Base,
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}))
		r.Get("/health", srv.handleHealth)
		r.Get("/api/regions", srv.handleRegions)
		r.Get("/api/timeseries", srv.handleTimeSeries)
		r.Get("/api/rates", srv.handleRates)
		r.Post("/api/reports", srv.handleUpload)
		r.Handle("/charts/*", http.StripPrefix("/charts/", http.FileServer(http.Dir(cfg.Charts.Dir))))

		return startServer(ctx, r, resolvePort(servePort, cfg.Server.Port))
	},
}

func resolvePort(flag, fallback int) int {
	if flag != 0 {
		return flag
	}
	return fallback
}

// startServer serves until ctx is cancelled, then drains in-flight requests
// under a fresh timeout context. The signal context is already done at
// shutdown time and would force-close immediately.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
