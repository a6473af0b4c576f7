package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

func streamOf(entries ...domain.AuditEntry) *entryReaderMock {
	return &entryReaderMock{
		StreamFunc: func(ctx context.Context, f domain.AuditFilter, fn func(domain.AuditEntry) error) error {
			for _, e := range entries {
				if err := fn(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func readCSV(t *testing.T, payload []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("payload is not valid CSV: %v", err)
	}
	return records
}

func TestExport_EmptyResultIsHeaderOnly(t *testing.T) {
	t.Parallel()

	svc := newTestQueryService(streamOf())

	payload, err := svc.Export(context.Background(), domain.AuditFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readCSV(t, payload)
	if len(records) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(records))
	}
	for i, col := range ExportHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
}

func TestExport_RoundTripsSpecialCharacters(t *testing.T) {
	t.Parallel()

	details := "a,b \"quoted\"\nsecond line"
	actor := uuid.New()
	status := 404
	duration := int64(12)
	created := time.Date(2024, 7, 1, 10, 20, 30, 123456789, time.UTC)

	entry := domain.AuditEntry{
		ID:             uuid.New(),
		Action:         domain.ActionHTTPRequest,
		ActorID:        &actor,
		Details:        &details,
		HTTPStatusCode: &status,
		DurationMs:     &duration,
		CreatedAt:      created,
	}
	svc := newTestQueryService(streamOf(entry))

	payload, err := svc.Export(context.Background(), domain.AuditFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readCSV(t, payload)
	if len(records) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(records))
	}
	row := make(map[string]string, len(ExportHeader))
	for i, col := range ExportHeader {
		row[col] = records[1][i]
	}

	if row["details"] != details {
		t.Errorf("details = %q, want %q", row["details"], details)
	}
	if row["id"] != entry.ID.String() || row["actor_id"] != actor.String() {
		t.Errorf("ids = %q / %q", row["id"], row["actor_id"])
	}
	if row["action"] != "HTTP_REQUEST" || row["http_status_code"] != "404" || row["duration_ms"] != "12" {
		t.Errorf("unexpected row: %v", row)
	}
	if row["created_at"] != "2024-07-01T10:20:30.123456789Z" {
		t.Errorf("created_at = %q", row["created_at"])
	}
	if row["entity_name"] != "" || row["sql_command"] != "" {
		t.Error("absent fields must export as empty")
	}
}

func TestExport_LineBreaksInDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		raw  string // line break as written to the payload
		want string // as read back by csv.Reader
	}{
		{"lone carriage return", "line1\rline2, \"q\"", "line1\rline2", "line1\rline2, \"q\""},
		{"lone line feed", "line1\nline2", "line1\nline2", "line1\nline2"},
		// csv.Reader folds a quoted \r\n to \n.
		{"crlf", "line1\r\nline2, \"q\"", "line1\r\nline2", "line1\nline2, \"q\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			details := tt.in
			svc := newTestQueryService(streamOf(domain.AuditEntry{
				ID:        uuid.New(),
				Action:    domain.ActionUpdate,
				Details:   &details,
				CreatedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			}))

			payload, err := svc.Export(context.Background(), domain.AuditFilter{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Contains(payload, []byte(tt.raw)) {
				t.Errorf("payload must keep the line break verbatim: %q", payload)
			}

			records := readCSV(t, payload)
			if len(records) != 2 {
				t.Fatalf("expected 2 rows, got %d", len(records))
			}
			for i, col := range ExportHeader {
				if col == "details" && records[1][i] != tt.want {
					t.Errorf("details = %q, want %q", records[1][i], tt.want)
				}
			}
		})
	}
}

func TestExport_StoreFailureReturnsNoPayload(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("read timeout")
	reader := &entryReaderMock{
		StreamFunc: func(ctx context.Context, f domain.AuditFilter, fn func(domain.AuditEntry) error) error {
			_ = fn(domain.AuditEntry{ID: uuid.New()})
			return storeErr
		},
	}
	svc := newTestQueryService(reader)

	payload, err := svc.Export(context.Background(), domain.AuditFilter{})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if payload != nil {
		t.Error("no partial payload on failure")
	}
}

func TestExport_RejectsInvertedRange(t *testing.T) {
	t.Parallel()

	from := time.Now()
	to := from.Add(-time.Hour)
	svc := newTestQueryService(&entryReaderMock{})

	if _, err := svc.Export(context.Background(), domain.AuditFilter{From: &from, To: &to}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 12, 31, 2, 5, 9, 0, loc)

	if got, want := ExportFilename(now), "audit_logs_20241230_230509.csv"; got != want {
		t.Errorf("ExportFilename() = %q, want %q", got, want)
	}
}
