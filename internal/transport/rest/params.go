package rest

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	dateLayout      = "2006-01-02"
)

// parseFilter reads actorId, action, from and to. Every malformed value is
// reported; absent values leave the filter field nil.
func parseFilter(q url.Values) (domain.AuditFilter, []domain.FieldError) {
	var (
		f    domain.AuditFilter
		errs []domain.FieldError
	)

	if v := q.Get("actorId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "actorId", Message: "must be a UUID"})
		} else {
			f.ActorID = &id
		}
	}

	if v := q.Get("action"); v != "" {
		kind, ok := domain.ParseActionKind(v)
		if !ok {
			errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
		} else {
			f.Action = &kind
		}
	}

	if v := q.Get("from"); v != "" {
		t, _, err := parseTime(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "from", Message: "must be RFC 3339 or YYYY-MM-DD"})
		} else {
			f.From = &t
		}
	}

	if v := q.Get("to"); v != "" {
		t, dateOnly, err := parseTime(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "to", Message: "must be RFC 3339 or YYYY-MM-DD"})
		} else {
			// A bare date covers the whole day.
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			f.To = &t
		}
	}

	return f, errs
}

// parseTime accepts RFC 3339 timestamps and UTC calendar dates.
func parseTime(v string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse(dateLayout, v); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

// parsePagination applies the defaults for absent parameters. Present values
// must be integers; range checks belong to the query service.
func parsePagination(q url.Values) (page, pageSize int, errs []domain.FieldError) {
	page, pageSize = defaultPage, defaultPageSize

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "page", Message: "must be an integer"})
		} else {
			page = n
		}
	}

	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "pageSize", Message: "must be an integer"})
		} else {
			pageSize = n
		}
	}

	return page, pageSize, errs
}
