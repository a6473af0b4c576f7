// Package auditlog implements the audit entry store using PostgreSQL.
// The store is append-only: entries are inserted and read, never updated.
package auditlog

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/recordkeeper-audit/internal/adapter/postgres"
	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

const entity = "audit_entry"

var columns = []string{
	"id", "action", "actor_id", "entity_name", "entity_id", "correlation_id",
	"ip_address", "user_agent", "details", "http_method", "http_path",
	"http_status_code", "duration_ms", "sql_command", "sql_parameters", "created_at",
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides audit entry persistence backed by PostgreSQL.
type Repo struct {
	db         postgres.Querier
	table      string
	standalone bool
}

// New creates a repository over table. An empty table defaults to audit_logs.
// The name is interpolated into SQL; callers pass a validated identifier.
func New(db postgres.Querier, table string) *Repo {
	if table == "" {
		table = "audit_logs"
	}
	return &Repo{db: db, table: table}
}

// Table returns the table name the repository writes to.
func (r *Repo) Table() string { return r.table }

// Standalone returns a copy of r that ignores any transaction carried by the
// context and always uses its own querier.
func (r *Repo) Standalone() *Repo {
	c := *r
	c.standalone = true
	return &c
}

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	if r.standalone {
		return r.db
	}
	return postgres.QuerierFromCtx(ctx, r.db)
}

// entryRow mirrors one audit_logs row.
type entryRow struct {
	ID             uuid.UUID  `db:"id"`
	Action         string     `db:"action"`
	ActorID        *uuid.UUID `db:"actor_id"`
	EntityName     *string    `db:"entity_name"`
	EntityID       *string    `db:"entity_id"`
	CorrelationID  *string    `db:"correlation_id"`
	IPAddress      *string    `db:"ip_address"`
	UserAgent      *string    `db:"user_agent"`
	Details        *string    `db:"details"`
	HTTPMethod     *string    `db:"http_method"`
	HTTPPath       *string    `db:"http_path"`
	HTTPStatusCode *int32     `db:"http_status_code"`
	DurationMs     *int64     `db:"duration_ms"`
	SQLCommand     *string    `db:"sql_command"`
	SQLParameters  *string    `db:"sql_parameters"`
	CreatedAt      time.Time  `db:"created_at"`
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts a single entry. A zero ID or CreatedAt is filled in.
func (r *Repo) Append(ctx context.Context, e domain.AuditEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var status *int32
	if e.HTTPStatusCode != nil {
		v := int32(*e.HTTPStatusCode)
		status = &v
	}

	query, args, err := builder.
		Insert(r.table).
		Columns(columns...).
		Values(
			e.ID, string(e.Action.OrUnknown()), e.ActorID, e.EntityName, e.EntityID, e.CorrelationID,
			e.IPAddress, e.UserAgent, e.Details, e.HTTPMethod, e.HTTPPath,
			status, e.DurationMs, e.SQLCommand, e.SQLParameters, e.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", entity, err)
	}

	if _, err := r.querier(ctx).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, entity, e.ID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns entries matching filter ordered newest first, created_at DESC
// then id DESC, skipping offset rows and returning at most limit.
func (r *Repo) List(ctx context.Context, filter domain.AuditFilter, limit, offset int) ([]domain.AuditEntry, error) {
	query, args, err := r.selectBuilder(filter).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", entity, err)
	}

	var rows []entryRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = toDomain(row)
	}
	return entries, nil
}

// Count returns the number of entries matching filter.
func (r *Repo) Count(ctx context.Context, filter domain.AuditFilter) (int, error) {
	query, args, err := applyFilter(builder.Select("count(*)").From(r.table), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", entity, err)
	}

	var n int64
	if err := pgxscan.Get(ctx, r.querier(ctx), &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", entity, err)
	}
	return int(n), nil
}

// Stream calls fn for every entry matching filter in List order, without
// pagination. Iteration stops at the first error returned by fn.
func (r *Repo) Stream(ctx context.Context, filter domain.AuditFilter, fn func(domain.AuditEntry) error) error {
	query, args, err := r.selectBuilder(filter).ToSql()
	if err != nil {
		return fmt.Errorf("build stream %s: %w", entity, err)
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("stream %s: %w", entity, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row entryRow
		if err := pgxscan.ScanRow(&row, rows); err != nil {
			return fmt.Errorf("scan %s: %w", entity, err)
		}
		if err := fn(toDomain(row)); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("stream %s: %w", entity, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) selectBuilder(filter domain.AuditFilter) sq.SelectBuilder {
	return applyFilter(builder.Select(columns...).From(r.table), filter).
		OrderBy("created_at DESC", "id DESC")
}

func applyFilter(b sq.SelectBuilder, f domain.AuditFilter) sq.SelectBuilder {
	if f.ActorID != nil {
		b = b.Where(sq.Eq{"actor_id": *f.ActorID})
	}
	if f.Action != nil {
		b = b.Where(sq.Eq{"action": string(*f.Action)})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{"created_at": *f.To})
	}
	return b
}

func toDomain(row entryRow) domain.AuditEntry {
	action, _ := domain.ParseActionKind(row.Action)

	var status *int
	if row.HTTPStatusCode != nil {
		v := int(*row.HTTPStatusCode)
		status = &v
	}

	return domain.AuditEntry{
		ID:             row.ID,
		Action:         action,
		ActorID:        row.ActorID,
		EntityName:     row.EntityName,
		EntityID:       row.EntityID,
		CorrelationID:  row.CorrelationID,
		IPAddress:      row.IPAddress,
		UserAgent:      row.UserAgent,
		Details:        row.Details,
		HTTPMethod:     row.HTTPMethod,
		HTTPPath:       row.HTTPPath,
		HTTPStatusCode: status,
		DurationMs:     row.DurationMs,
		SQLCommand:     row.SQLCommand,
		SQLParameters:  row.SQLParameters,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}
