package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

// ExportContentType is the media type of an export payload.
const ExportContentType = "text/csv"

// ExportHeader is the first row of every export.
var ExportHeader = []string{
	"id", "action", "actor_id", "entity_name", "entity_id", "correlation_id",
	"ip_address", "user_agent", "details", "http_method", "http_path",
	"http_status_code", "duration_ms", "sql_command", "sql_parameters", "created_at",
}

// ExportFilename returns the download name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "audit_logs_" + now.UTC().Format("20060102_150405") + ".csv"
}

// Export renders every entry matching filter as CSV, newest first, without
// pagination. The payload is built completely before it is returned, so a
// failure never yields a partial file. An empty result is the header row alone.
func (s *QueryService) Export(ctx context.Context, filter domain.AuditFilter) ([]byte, error) {
	if err := validateFilter(filter); err != nil {
		return nil, &domain.ValidationError{Errors: []domain.FieldError{*err}}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ExportHeader); err != nil {
		return nil, fmt.Errorf("export audit entries: %w", err)
	}

	rows := 0
	err := s.entries.Stream(ctx, filter, func(e domain.AuditEntry) error {
		rows++
		return w.Write(exportRecord(e))
	})
	if err != nil {
		return nil, fmt.Errorf("export audit entries: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export audit entries: %w", err)
	}

	s.log.InfoContext(ctx, "audit entries exported", "rows", rows)
	return buf.Bytes(), nil
}

func exportRecord(e domain.AuditEntry) []string {
	actor := ""
	if e.ActorID != nil {
		actor = e.ActorID.String()
	}
	status := ""
	if e.HTTPStatusCode != nil {
		status = strconv.Itoa(*e.HTTPStatusCode)
	}
	duration := ""
	if e.DurationMs != nil {
		duration = strconv.FormatInt(*e.DurationMs, 10)
	}

	return []string{
		e.ID.String(),
		e.Action.String(),
		actor,
		deref(e.EntityName),
		deref(e.EntityID),
		deref(e.CorrelationID),
		deref(e.IPAddress),
		deref(e.UserAgent),
		deref(e.Details),
		deref(e.HTTPMethod),
		deref(e.HTTPPath),
		status,
		duration,
		deref(e.SQLCommand),
		deref(e.SQLParameters),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
