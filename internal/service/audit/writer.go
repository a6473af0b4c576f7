package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
	"github.com/heartmarshall/recordkeeper-audit/pkg/ctxutil"
)

type entryStore interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// ActionInput describes an explicit domain action. Empty strings and a nil
// ActorID mean absent. Absent actor, ip, user agent and correlation id are
// taken from the request context when it carries them.
type ActionInput struct {
	Kind          domain.ActionKind
	ActorID       *uuid.UUID
	EntityName    string
	EntityID      string
	IPAddress     string
	UserAgent     string
	CorrelationID string
	Details       Details
}

// HTTPCapture is the data read from one completed inbound request.
type HTTPCapture struct {
	Method        string
	Path          string
	StatusCode    int
	Duration      time.Duration
	ActorID       *uuid.UUID
	IPAddress     string
	UserAgent     string
	CorrelationID string
}

// CommandCapture is the data read from one completed storage command.
type CommandCapture struct {
	SQL        string
	Parameters string
	Duration   time.Duration
}

// Writer builds audit entries and appends them to the entry store.
// Every store call runs under Suppress, so the command it issues is never
// captured itself.
type Writer struct {
	store   entryStore
	metrics *Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewWriter creates a Writer. metrics may be nil.
func NewWriter(log *slog.Logger, store entryStore, metrics *Metrics) *Writer {
	return &Writer{
		store:   store,
		metrics: metrics,
		log:     log.With("service", "audit"),
		now:     time.Now,
	}
}

// RecordAction appends an explicit action entry and returns it.
// A details payload that cannot be encoded is replaced by
// UnserializableDetails; a store failure is returned to the caller.
func (w *Writer) RecordAction(ctx context.Context, in ActionInput) (domain.AuditEntry, error) {
	entry := w.newEntry(ctx, in.Kind)

	if in.ActorID != nil {
		entry.ActorID = in.ActorID
	}
	entry.EntityName = strOrNil(in.EntityName)
	entry.EntityID = strOrNil(in.EntityID)
	if in.IPAddress != "" {
		entry.IPAddress = &in.IPAddress
	}
	if in.UserAgent != "" {
		entry.UserAgent = &in.UserAgent
	}
	if in.CorrelationID != "" {
		entry.CorrelationID = &in.CorrelationID
	}

	details, err := in.Details.encode()
	if err != nil {
		w.log.WarnContext(ctx, "audit details not serializable",
			slog.String("action", entry.Action.String()),
			slog.String("error", err.Error()),
		)
		marker := UnserializableDetails
		details = &marker
	}
	entry.Details = details

	if err := w.append(ctx, entry, sourceAction); err != nil {
		return domain.AuditEntry{}, fmt.Errorf("record audit action: %w", err)
	}
	return entry, nil
}

// RecordHTTP appends an HTTP_REQUEST entry for a completed request.
func (w *Writer) RecordHTTP(ctx context.Context, c HTTPCapture) error {
	entry := w.newEntry(ctx, domain.ActionHTTPRequest)

	if c.ActorID != nil {
		entry.ActorID = c.ActorID
	}
	if c.IPAddress != "" {
		entry.IPAddress = &c.IPAddress
	}
	if c.UserAgent != "" {
		entry.UserAgent = &c.UserAgent
	}
	if c.CorrelationID != "" {
		entry.CorrelationID = &c.CorrelationID
	}
	entry.HTTPMethod = &c.Method
	entry.HTTPPath = &c.Path
	status := c.StatusCode
	entry.HTTPStatusCode = &status
	entry.DurationMs = durationMs(c.Duration)

	if err := w.append(ctx, entry, sourceHTTP); err != nil {
		return fmt.Errorf("record http request: %w", err)
	}
	return nil
}

// RecordCommand appends a SQL_COMMAND entry for a completed storage command.
func (w *Writer) RecordCommand(ctx context.Context, c CommandCapture) error {
	entry := w.newEntry(ctx, domain.ActionSQLCommand)

	entry.SQLCommand = &c.SQL
	entry.SQLParameters = strOrNil(c.Parameters)
	entry.DurationMs = durationMs(c.Duration)

	if err := w.append(ctx, entry, sourceCommand); err != nil {
		return fmt.Errorf("record storage command: %w", err)
	}
	return nil
}

// newEntry returns an entry of kind with id, timestamp and the request
// context's actor, client and correlation values filled in.
func (w *Writer) newEntry(ctx context.Context, kind domain.ActionKind) domain.AuditEntry {
	entry := domain.AuditEntry{
		ID:        uuid.New(),
		Action:    kind.OrUnknown(),
		CreatedAt: w.now().UTC(),
	}

	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		entry.ActorID = &id
	}
	if info, ok := ctxutil.ClientInfoFromCtx(ctx); ok {
		entry.IPAddress = strOrNil(info.IP)
		entry.UserAgent = strOrNil(info.UserAgent)
	}
	entry.CorrelationID = strOrNil(ctxutil.RequestIDFromCtx(ctx))

	return entry
}

func (w *Writer) append(ctx context.Context, entry domain.AuditEntry, source string) error {
	ctx, release := Suppress(ctx)
	defer release()

	if err := w.store.Append(ctx, entry); err != nil {
		w.metrics.incFailed(source)
		return err
	}
	w.metrics.incCaptured(source)
	return nil
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func durationMs(d time.Duration) *int64 {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &ms
}
