package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActionKind is the closed set of categories an AuditEntry can represent.
type ActionKind string

const (
	ActionCreate      ActionKind = "CREATE"
	ActionUpdate      ActionKind = "UPDATE"
	ActionDelete      ActionKind = "DELETE"
	ActionLogin       ActionKind = "LOGIN"
	ActionLogout      ActionKind = "LOGOUT"
	ActionAssign      ActionKind = "ASSIGN"
	ActionTransition  ActionKind = "TRANSITION"
	ActionBackup      ActionKind = "BACKUP"
	ActionRestore     ActionKind = "RESTORE"
	ActionUpload      ActionKind = "UPLOAD"
	ActionDownload    ActionKind = "DOWNLOAD"
	ActionHTTPRequest ActionKind = "HTTP_REQUEST"
	ActionSQLCommand  ActionKind = "SQL_COMMAND"
	ActionExport      ActionKind = "EXPORT"
	ActionComment     ActionKind = "COMMENT"
	ActionUnknown     ActionKind = "UNKNOWN"
)

// ActionKinds lists every member of the enumeration in declaration order.
var ActionKinds = []ActionKind{
	ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout,
	ActionAssign, ActionTransition, ActionBackup, ActionRestore, ActionUpload,
	ActionDownload, ActionHTTPRequest, ActionSQLCommand, ActionExport,
	ActionComment, ActionUnknown,
}

func (a ActionKind) String() string { return string(a) }

func (a ActionKind) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout,
		ActionAssign, ActionTransition, ActionBackup, ActionRestore, ActionUpload,
		ActionDownload, ActionHTTPRequest, ActionSQLCommand, ActionExport,
		ActionComment, ActionUnknown:
		return true
	}
	return false
}

// OrUnknown returns a itself when it belongs to the enumeration, ActionUnknown otherwise.
func (a ActionKind) OrUnknown() ActionKind {
	if a.IsValid() {
		return a
	}
	return ActionUnknown
}

// ParseActionKind accepts the stored form ("HTTP_REQUEST") as well as the
// camel-cased form ("HttpRequest"), case-insensitively. The second return
// value is false when s names no member; the kind is then ActionUnknown.
func ParseActionKind(s string) (ActionKind, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for _, k := range ActionKinds {
		if strings.ReplaceAll(string(k), "_", "") == norm {
			return k, true
		}
	}
	return ActionUnknown, false
}

// AuditEntry is a single append-only audit record. One schema covers explicit
// domain actions, HTTP request captures and storage command captures; the
// category-specific fields are nil when they do not apply.
type AuditEntry struct {
	ID            uuid.UUID
	Action        ActionKind
	ActorID       *uuid.UUID
	EntityName    *string
	EntityID      *string
	CorrelationID *string
	IPAddress     *string
	UserAgent     *string
	Details       *string
	CreatedAt     time.Time

	// HTTP category.
	HTTPMethod     *string
	HTTPPath       *string
	HTTPStatusCode *int

	// Command category.
	SQLCommand    *string
	SQLParameters *string

	// DurationMs is shared by the HTTP and command categories.
	DurationMs *int64
}

// AuditFilter selects audit entries. All set fields combine with AND.
// From and To are inclusive bounds on CreatedAt.
type AuditFilter struct {
	ActorID *uuid.UUID
	Action  *ActionKind
	From    *time.Time
	To      *time.Time
}

// AuditPage is one page of a filtered audit query.
type AuditPage struct {
	Entries    []AuditEntry
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// TotalPages returns ceil(total / pageSize); zero when pageSize is not positive.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
