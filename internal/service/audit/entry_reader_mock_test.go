package audit

import (
	"context"
	"sync"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

var _ entryReader = &entryReaderMock{}

type entryReaderMock struct {
	CountFunc  func(ctx context.Context, filter domain.AuditFilter) (int, error)
	ListFunc   func(ctx context.Context, filter domain.AuditFilter, limit int, offset int) ([]domain.AuditEntry, error)
	StreamFunc func(ctx context.Context, filter domain.AuditFilter, fn func(domain.AuditEntry) error) error

	calls struct {
		Count []struct {
			Ctx    context.Context
			Filter domain.AuditFilter
		}
		List []struct {
			Ctx    context.Context
			Filter domain.AuditFilter
			Limit  int
			Offset int
		}
		Stream []struct {
			Ctx    context.Context
			Filter domain.AuditFilter
			Fn     func(domain.AuditEntry) error
		}
	}
	lockCount  sync.RWMutex
	lockList   sync.RWMutex
	lockStream sync.RWMutex
}

func (mock *entryReaderMock) Count(ctx context.Context, filter domain.AuditFilter) (int, error) {
	if mock.CountFunc == nil {
		panic("entryReaderMock.CountFunc: method is nil but entryReader.Count was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.AuditFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, callInfo)
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx, filter)
}

func (mock *entryReaderMock) CountCalls() []struct {
	Ctx    context.Context
	Filter domain.AuditFilter
} {
	mock.lockCount.RLock()
	calls := mock.calls.Count
	mock.lockCount.RUnlock()
	return calls
}

func (mock *entryReaderMock) List(ctx context.Context, filter domain.AuditFilter, limit int, offset int) ([]domain.AuditEntry, error) {
	if mock.ListFunc == nil {
		panic("entryReaderMock.ListFunc: method is nil but entryReader.List was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.AuditFilter
		Limit  int
		Offset int
	}{Ctx: ctx, Filter: filter, Limit: limit, Offset: offset}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter, limit, offset)
}

func (mock *entryReaderMock) ListCalls() []struct {
	Ctx    context.Context
	Filter domain.AuditFilter
	Limit  int
	Offset int
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *entryReaderMock) Stream(ctx context.Context, filter domain.AuditFilter, fn func(domain.AuditEntry) error) error {
	if mock.StreamFunc == nil {
		panic("entryReaderMock.StreamFunc: method is nil but entryReader.Stream was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.AuditFilter
		Fn     func(domain.AuditEntry) error
	}{Ctx: ctx, Filter: filter, Fn: fn}
	mock.lockStream.Lock()
	mock.calls.Stream = append(mock.calls.Stream, callInfo)
	mock.lockStream.Unlock()
	return mock.StreamFunc(ctx, filter, fn)
}

func (mock *entryReaderMock) StreamCalls() []struct {
	Ctx    context.Context
	Filter domain.AuditFilter
	Fn     func(domain.AuditEntry) error
} {
	mock.lockStream.RLock()
	calls := mock.calls.Stream
	mock.lockStream.RUnlock()
	return calls
}
