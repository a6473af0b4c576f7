package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/heartmarshall/recordkeeper-audit/internal/config"
	"github.com/heartmarshall/recordkeeper-audit/internal/transport/middleware"
	"github.com/heartmarshall/recordkeeper-audit/migrations"
)

const defaultAuditTable = "audit_logs"

// Run is the application entry point. It loads configuration, applies
// migrations when enabled, wires the audit pipeline and serves HTTP until
// ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("audit_table", cfg.Audit.Table),
		slog.Bool("capture_commands", cfg.Audit.CaptureCommands),
	)

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Up(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", slog.Int("count", len(applied)))
		if cfg.Audit.Table != defaultAuditTable {
			logger.Warn("migrations create audit_logs only; the configured table must exist with the same schema",
				slog.String("audit_table", cfg.Audit.Table))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline, err := NewPipeline(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      newRouter(cfg, logger, pipeline, limiter, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			_ = pipeline.Close(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := pipeline.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	dropped, processed, failed := pipeline.Dispatcher.Stats()
	logger.Info("stopped",
		slog.Int64("audit_dropped", dropped),
		slog.Int64("audit_processed", processed),
		slog.Int64("audit_failed", failed),
	)

	return errors.Join(errs...)
}
