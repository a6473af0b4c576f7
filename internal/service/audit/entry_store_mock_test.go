package audit

import (
	"context"
	"sync"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

var _ entryStore = &entryStoreMock{}

type entryStoreMock struct {
	AppendFunc func(ctx context.Context, entry domain.AuditEntry) error

	calls struct {
		Append []struct {
			Ctx   context.Context
			Entry domain.AuditEntry
		}
	}
	lockAppend sync.RWMutex
}

func (mock *entryStoreMock) Append(ctx context.Context, entry domain.AuditEntry) error {
	if mock.AppendFunc == nil {
		panic("entryStoreMock.AppendFunc: method is nil but entryStore.Append was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Entry domain.AuditEntry
	}{Ctx: ctx, Entry: entry}
	mock.lockAppend.Lock()
	mock.calls.Append = append(mock.calls.Append, callInfo)
	mock.lockAppend.Unlock()
	return mock.AppendFunc(ctx, entry)
}

func (mock *entryStoreMock) AppendCalls() []struct {
	Ctx   context.Context
	Entry domain.AuditEntry
} {
	mock.lockAppend.RLock()
	calls := mock.calls.Append
	mock.lockAppend.RUnlock()
	return calls
}
