package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
	"github.com/heartmarshall/recordkeeper-audit/internal/transport/middleware"
)

const maxActionBody = 64 << 10

type auditQuerier interface {
	Query(ctx context.Context, in audit.QueryInput) (domain.AuditPage, error)
	Export(ctx context.Context, filter domain.AuditFilter) ([]byte, error)
}

type actionRecorder interface {
	RecordAction(ctx context.Context, in audit.ActionInput) (domain.AuditEntry, error)
}

// AuditHandler serves the audit log REST endpoints.
type AuditHandler struct {
	query    auditQuerier
	recorder actionRecorder
	log      *slog.Logger
	now      func() time.Time
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(query auditQuerier, recorder actionRecorder, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		query:    query,
		recorder: recorder,
		log:      logger.With("handler", "audit"),
		now:      time.Now,
	}
}

type entryResponse struct {
	ID             string    `json:"id"`
	Action         string    `json:"action"`
	ActorID        *string   `json:"actorId"`
	EntityName     *string   `json:"entityName"`
	EntityID       *string   `json:"entityId"`
	CorrelationID  *string   `json:"correlationId"`
	IPAddress      *string   `json:"ipAddress"`
	UserAgent      *string   `json:"userAgent"`
	Details        *string   `json:"details"`
	HTTPMethod     *string   `json:"httpMethod"`
	HTTPPath       *string   `json:"httpPath"`
	HTTPStatusCode *int      `json:"httpStatusCode"`
	DurationMs     *int64    `json:"durationMs"`
	SQLCommand     *string   `json:"sqlCommand"`
	SQLParameters  *string   `json:"sqlParameters"`
	CreatedAt      time.Time `json:"createdAt"`
}

type pageResponse struct {
	Entries    []entryResponse `json:"entries"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type recordActionRequest struct {
	Action     string          `json:"action"`
	EntityName string          `json:"entityName"`
	EntityID   string          `json:"entityId"`
	Details    json.RawMessage `json:"details"`
}

// List handles GET /api/audit-logs.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, errs := parseFilter(q)
	page, pageSize, pageErrs := parsePagination(q)
	errs = append(errs, pageErrs...)
	if len(errs) > 0 {
		handleError(h.log, w, r, domain.NewValidationErrors(errs))
		return
	}

	result, err := h.query.Query(r.Context(), audit.QueryInput{
		Filter:   filter,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(result))
}

// Export handles GET /api/audit-logs/export. The whole document is built
// before anything is written, so a failure never yields a partial file.
func (h *AuditHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseFilter(r.URL.Query())
	if len(errs) > 0 {
		handleError(h.log, w, r, domain.NewValidationErrors(errs))
		return
	}

	data, err := h.query.Export(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	// Best effort: the export itself is an auditable action.
	if _, err := h.recorder.RecordAction(r.Context(), audit.ActionInput{
		Kind:       domain.ActionExport,
		EntityName: "audit_logs",
		Details:    audit.FieldDetails(filterDetails(filter)),
	}); err != nil {
		h.log.WarnContext(r.Context(), "record export action", slog.String("error", err.Error()))
	}

	filename := audit.ExportFilename(h.now())
	w.Header().Set("Content-Type", audit.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// RecordAction handles POST /api/audit-logs/actions for collaborators that
// run outside this process. The actor is the authenticated caller.
func (h *AuditHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireActor(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req recordActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, ok := domain.ParseActionKind(req.Action)
	if !ok || !recordable(kind) {
		handleError(h.log, w, r, domain.NewValidationError("action", "not a recordable action"))
		return
	}

	entry, err := h.recorder.RecordAction(r.Context(), audit.ActionInput{
		Kind:       kind,
		EntityName: req.EntityName,
		EntityID:   req.EntityID,
		Details:    decodeDetails(req.Details),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// recordable excludes the kinds only the pipeline itself produces.
func recordable(k domain.ActionKind) bool {
	switch k {
	case domain.ActionHTTPRequest, domain.ActionSQLCommand, domain.ActionUnknown:
		return false
	}
	return true
}

// decodeDetails keeps a JSON string as plain text and an object as fields.
// Any other JSON value is stored as its raw text.
func decodeDetails(raw json.RawMessage) audit.Details {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return audit.Details{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return audit.TextDetails(s)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		return audit.FieldDetails(fields)
	}
	return audit.TextDetails(string(raw))
}

func filterDetails(f domain.AuditFilter) map[string]any {
	m := map[string]any{}
	if f.ActorID != nil {
		m["actorId"] = f.ActorID.String()
	}
	if f.Action != nil {
		m["action"] = f.Action.String()
	}
	if f.From != nil {
		m["from"] = f.From.UTC().Format(time.RFC3339Nano)
	}
	if f.To != nil {
		m["to"] = f.To.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func toPageResponse(p domain.AuditPage) pageResponse {
	entries := make([]entryResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, toEntryResponse(e))
	}
	return pageResponse{
		Entries:    entries,
		TotalCount: p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

func toEntryResponse(e domain.AuditEntry) entryResponse {
	return entryResponse{
		ID:             e.ID.String(),
		Action:         e.Action.String(),
		ActorID:        uuidString(e.ActorID),
		EntityName:     e.EntityName,
		EntityID:       e.EntityID,
		CorrelationID:  e.CorrelationID,
		IPAddress:      e.IPAddress,
		UserAgent:      e.UserAgent,
		Details:        e.Details,
		HTTPMethod:     e.HTTPMethod,
		HTTPPath:       e.HTTPPath,
		HTTPStatusCode: e.HTTPStatusCode,
		DurationMs:     e.DurationMs,
		SQLCommand:     e.SQLCommand,
		SQLParameters:  e.SQLParameters,
		CreatedAt:      e.CreatedAt,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
