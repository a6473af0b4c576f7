package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/recordkeeper-audit/internal/adapter/postgres"
	"github.com/heartmarshall/recordkeeper-audit/internal/adapter/postgres/auditlog"
	"github.com/heartmarshall/recordkeeper-audit/internal/config"
	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
)

// Pipeline is the wired audit pipeline.
//
// Two pools are opened. AuditPool carries no tracer and is used only for
// appends, so writing an entry can never produce another capture or wait on
// a connection held by the command being captured. Pool carries the command
// interceptor and serves every other query, including audit reads, which the
// table guard skips.
//
// Writer persists captures on AuditPool. Actions records explicit actions on
// Pool and joins a transaction opened through TxManager, so an action rolls
// back with the business change it describes.
type Pipeline struct {
	AuditPool  *pgxpool.Pool
	Pool       *pgxpool.Pool
	TxManager  *postgres.TxManager
	Writer     *audit.Writer
	Actions    *audit.Writer
	Query      *audit.QueryService
	Dispatcher *audit.Dispatcher
	Metrics    *audit.Metrics
}

// NewPipeline connects to the database and builds every audit component.
// reg may be nil.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	metrics := audit.NewMetrics(reg)

	auditPool, err := postgres.NewPool(ctx, cfg.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("audit pool: %w", err)
	}

	store := auditlog.New(auditPool, cfg.Audit.Table).Standalone()
	writer := audit.NewWriter(logger, store, metrics)

	var tracer pgx.QueryTracer
	if cfg.Audit.CaptureCommands {
		tracer = audit.NewCommandInterceptor(logger, writer, cfg.Audit.Table, metrics)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, tracer)
	if err != nil {
		auditPool.Close()
		return nil, fmt.Errorf("pool: %w", err)
	}

	repo := auditlog.New(pool, cfg.Audit.Table)

	return &Pipeline{
		AuditPool:  auditPool,
		Pool:       pool,
		TxManager:  postgres.NewTxManager(pool),
		Writer:     writer,
		Actions:    audit.NewWriter(logger, repo, metrics),
		Query:      audit.NewQueryService(logger, repo, cfg.Audit.MaxPageSize),
		Dispatcher: audit.NewDispatcher(logger, writer, cfg.Audit.QueueSize, cfg.Audit.Workers, metrics),
		Metrics:    metrics,
	}, nil
}

// Close drains the capture queue, bounded by ctx, then closes both pools.
// The audit pool closes last so queued captures can still be written.
func (p *Pipeline) Close(ctx context.Context) error {
	var errs []error
	if err := p.Dispatcher.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	p.Pool.Close()
	p.AuditPool.Close()
	return errors.Join(errs...)
}
