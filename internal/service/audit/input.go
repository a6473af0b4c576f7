package audit

import (
	"math"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

// QueryInput holds the parameters of a paginated audit query.
type QueryInput struct {
	Filter   domain.AuditFilter
	Page     int // 1-based
	PageSize int
}

// Validate checks all fields against maxPageSize and collects all errors.
func (i QueryInput) Validate(maxPageSize int) error {
	var errs []domain.FieldError

	if i.Page < 1 {
		errs = append(errs, domain.FieldError{Field: "page", Message: "must be at least 1"})
	}
	if i.PageSize < 1 {
		errs = append(errs, domain.FieldError{Field: "page_size", Message: "must be at least 1"})
	} else if i.Page > 1 && i.Page-1 > math.MaxInt/i.PageSize {
		// (page-1)*pageSize must fit the offset.
		errs = append(errs, domain.FieldError{Field: "page", Message: "is out of range"})
	}
	if maxPageSize > 0 && i.PageSize > maxPageSize {
		errs = append(errs, domain.FieldError{Field: "page_size", Message: "exceeds maximum page size"})
	}
	if err := validateFilter(i.Filter); err != nil {
		errs = append(errs, *err)
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateFilter(f domain.AuditFilter) *domain.FieldError {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return &domain.FieldError{Field: "from", Message: "must not be after to"}
	}
	return nil
}
