package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

// SeedEntry inserts an audit entry with plain SQL, bypassing the repository.
// mutate may adjust the defaults (an UPDATE action created now) before insert.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, mutate func(e *domain.AuditEntry)) domain.AuditEntry {
	t.Helper()

	e := domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionUpdate,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if mutate != nil {
		mutate(&e)
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO audit_logs (id, action, actor_id, entity_name, entity_id, details, http_method, http_path, http_status_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, string(e.Action), e.ActorID, e.EntityName, e.EntityID, e.Details,
		e.HTTPMethod, e.HTTPPath, e.HTTPStatusCode, e.CreatedAt,
	)
	if err != nil {
		t.Fatalf("SeedEntry: %v", err)
	}

	return e
}

// CountEntries returns the number of rows in audit_logs.
func CountEntries(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), `SELECT count(*) FROM audit_logs`).Scan(&n); err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	return n
}
