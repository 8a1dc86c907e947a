package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"triage-advisor/internal/db"
	httpserver "triage-advisor/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the intake form and JSON API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.APIKey == "" {
		logger.Warn("NEBIUS_API_KEY not set; assessments will report a configuration error")
	}

	opts := httpserver.Options{Logger: logger}
	if cfg.FrontendURL != "" {
		opts.AllowedOrigins = []string{cfg.FrontendURL}
	}
	if cfg.DatabaseURL != "" {
		conn, err := openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		opts.Store = db.NewRepository(conn)
		opts.Notifier = db.NewNotifier(conn, cfg.NotifyChannel)
		logger.Info("assessment log enabled", zap.String("notify_channel", cfg.NotifyChannel))
	}

	srv, err := httpserver.NewServer(newTriageService(cfg, logger), opts)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpSrv.Addr), zap.String("model", cfg.Model))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// openDatabase connects to Postgres, verifies the connection and applies
// the schema.
func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
