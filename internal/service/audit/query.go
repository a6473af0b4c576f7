package audit

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

type entryReader interface {
	List(ctx context.Context, filter domain.AuditFilter, limit, offset int) ([]domain.AuditEntry, error)
	Count(ctx context.Context, filter domain.AuditFilter) (int, error)
	Stream(ctx context.Context, filter domain.AuditFilter, fn func(domain.AuditEntry) error) error
}

// QueryService answers filtered, paginated audit queries and CSV exports.
type QueryService struct {
	entries     entryReader
	maxPageSize int
	log         *slog.Logger
}

// NewQueryService creates a QueryService. A non-positive maxPageSize
// disables the page size ceiling.
func NewQueryService(log *slog.Logger, entries entryReader, maxPageSize int) *QueryService {
	return &QueryService{
		entries:     entries,
		maxPageSize: maxPageSize,
		log:         log.With("service", "audit_query"),
	}
}

// Query returns one page of entries matching the filter, newest first.
// The total count is independent of the requested page; a page past the end
// is empty with the same total.
func (s *QueryService) Query(ctx context.Context, in QueryInput) (domain.AuditPage, error) {
	if err := in.Validate(s.maxPageSize); err != nil {
		return domain.AuditPage{}, err
	}

	var (
		entries []domain.AuditEntry
		total   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.entries.Count(gctx, in.Filter)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.List(gctx, in.Filter, in.PageSize, (in.Page-1)*in.PageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AuditPage{}, fmt.Errorf("query audit entries: %w", err)
	}

	if entries == nil {
		entries = []domain.AuditEntry{}
	}

	return domain.AuditPage{
		Entries:    entries,
		TotalCount: total,
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalPages: domain.TotalPages(total, in.PageSize),
	}, nil
}
