package audit

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

//go:generate moq -out entry_reader_mock_test.go -pkg audit . entryReader

func newTestQueryService(reader *entryReaderMock) *QueryService {
	return NewQueryService(slog.Default(), reader, 500)
}

func entriesN(n int) []domain.AuditEntry {
	out := make([]domain.AuditEntry, n)
	for i := range out {
		out[i] = domain.AuditEntry{ID: uuid.New(), Action: domain.ActionHTTPRequest}
	}
	return out
}

func TestQuery_Validation(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input QueryInput
		field string
	}{
		{"page zero", QueryInput{Page: 0, PageSize: 10}, "page"},
		{"negative page", QueryInput{Page: -1, PageSize: 10}, "page"},
		{"page size zero", QueryInput{Page: 1, PageSize: 0}, "page_size"},
		{"page size above max", QueryInput{Page: 1, PageSize: 501}, "page_size"},
		{"offset overflows", QueryInput{Page: math.MaxInt, PageSize: 50}, "page"},
		{"offset overflows by one page", QueryInput{Page: math.MaxInt/50 + 2, PageSize: 50}, "page"},
		{"from after to", QueryInput{Page: 1, PageSize: 10, Filter: domain.AuditFilter{From: &from, To: &to}}, "from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := &entryReaderMock{}
			svc := newTestQueryService(reader)

			_, err := svc.Query(context.Background(), tt.input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Errors[0].Field != tt.field {
				t.Errorf("expected field error on %q, got %v", tt.field, err)
			}
			if len(reader.CountCalls())+len(reader.ListCalls()) != 0 {
				t.Error("store must not be queried for invalid input")
			}
		})
	}
}

func TestQuery_Pagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		page, pageSize int
		wantOffset     int
		wantPages      int
	}{
		{"first page", 1, 10, 0, 3},
		{"last page", 3, 10, 20, 3},
		{"past the end", 9, 10, 80, 3},
		{"single page", 1, 50, 0, 1},
		{"exact multiple", 1, 23, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := &entryReaderMock{
				CountFunc: func(ctx context.Context, filter domain.AuditFilter) (int, error) {
					return 23, nil
				},
				ListFunc: func(ctx context.Context, filter domain.AuditFilter, limit, offset int) ([]domain.AuditEntry, error) {
					n := 23 - offset
					if n < 0 {
						n = 0
					}
					if n > limit {
						n = limit
					}
					return entriesN(n), nil
				},
			}
			svc := newTestQueryService(reader)

			page, err := svc.Query(context.Background(), QueryInput{Page: tt.page, PageSize: tt.pageSize})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if page.TotalCount != 23 {
				t.Errorf("total = %d, want 23 on every page", page.TotalCount)
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("total pages = %d, want %d", page.TotalPages, tt.wantPages)
			}
			if page.Page != tt.page || page.PageSize != tt.pageSize {
				t.Errorf("page/pageSize echoed as %d/%d", page.Page, page.PageSize)
			}
			if page.Entries == nil {
				t.Error("entries must be non-nil")
			}

			call := reader.ListCalls()[0]
			if call.Limit != tt.pageSize || call.Offset != tt.wantOffset {
				t.Errorf("list limit/offset = %d/%d, want %d/%d", call.Limit, call.Offset, tt.pageSize, tt.wantOffset)
			}
		})
	}
}

func TestQuery_PassesFilterToCountAndList(t *testing.T) {
	t.Parallel()

	actor := uuid.New()
	action := domain.ActionDelete
	filter := domain.AuditFilter{ActorID: &actor, Action: &action}

	reader := &entryReaderMock{
		CountFunc: func(ctx context.Context, f domain.AuditFilter) (int, error) { return 0, nil },
		ListFunc: func(ctx context.Context, f domain.AuditFilter, limit, offset int) ([]domain.AuditEntry, error) {
			return nil, nil
		},
	}
	svc := newTestQueryService(reader)

	page, err := svc.Query(context.Background(), QueryInput{Filter: filter, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Entries) != 0 || page.TotalPages != 0 {
		t.Errorf("unexpected page: %+v", page)
	}

	if f := reader.CountCalls()[0].Filter; f.ActorID != &actor || f.Action != &action {
		t.Error("count did not receive the filter")
	}
	if f := reader.ListCalls()[0].Filter; f.ActorID != &actor || f.Action != &action {
		t.Error("list did not receive the filter")
	}
}

func TestQuery_StoreFailure(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")
	reader := &entryReaderMock{
		CountFunc: func(ctx context.Context, f domain.AuditFilter) (int, error) { return 0, storeErr },
		ListFunc: func(ctx context.Context, f domain.AuditFilter, limit, offset int) ([]domain.AuditEntry, error) {
			return entriesN(1), nil
		},
	}
	svc := newTestQueryService(reader)

	page, err := svc.Query(context.Background(), QueryInput{Page: 1, PageSize: 10})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if page.Entries != nil {
		t.Error("no partial results on failure")
	}
}
