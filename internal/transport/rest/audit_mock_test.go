package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
)

var _ auditQuerier = &auditQuerierMock{}

type auditQuerierMock struct {
	QueryFunc  func(ctx context.Context, in audit.QueryInput) (domain.AuditPage, error)
	ExportFunc func(ctx context.Context, filter domain.AuditFilter) ([]byte, error)

	calls struct {
		Query []struct {
			Ctx context.Context
			In  audit.QueryInput
		}
		Export []struct {
			Ctx    context.Context
			Filter domain.AuditFilter
		}
	}
	lockQuery  sync.RWMutex
	lockExport sync.RWMutex
}

func (mock *auditQuerierMock) Query(ctx context.Context, in audit.QueryInput) (domain.AuditPage, error) {
	if mock.QueryFunc == nil {
		panic("auditQuerierMock.QueryFunc: method is nil but auditQuerier.Query was just called")
	}
	callInfo := struct {
		Ctx context.Context
		In  audit.QueryInput
	}{Ctx: ctx, In: in}
	mock.lockQuery.Lock()
	mock.calls.Query = append(mock.calls.Query, callInfo)
	mock.lockQuery.Unlock()
	return mock.QueryFunc(ctx, in)
}

func (mock *auditQuerierMock) QueryCalls() []struct {
	Ctx context.Context
	In  audit.QueryInput
} {
	mock.lockQuery.RLock()
	calls := mock.calls.Query
	mock.lockQuery.RUnlock()
	return calls
}

func (mock *auditQuerierMock) Export(ctx context.Context, filter domain.AuditFilter) ([]byte, error) {
	if mock.ExportFunc == nil {
		panic("auditQuerierMock.ExportFunc: method is nil but auditQuerier.Export was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.AuditFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockExport.Lock()
	mock.calls.Export = append(mock.calls.Export, callInfo)
	mock.lockExport.Unlock()
	return mock.ExportFunc(ctx, filter)
}

func (mock *auditQuerierMock) ExportCalls() []struct {
	Ctx    context.Context
	Filter domain.AuditFilter
} {
	mock.lockExport.RLock()
	calls := mock.calls.Export
	mock.lockExport.RUnlock()
	return calls
}

var _ actionRecorder = &actionRecorderMock{}

type actionRecorderMock struct {
	RecordActionFunc func(ctx context.Context, in audit.ActionInput) (domain.AuditEntry, error)

	calls struct {
		RecordAction []struct {
			Ctx context.Context
			In  audit.ActionInput
		}
	}
	lockRecordAction sync.RWMutex
}

func (mock *actionRecorderMock) RecordAction(ctx context.Context, in audit.ActionInput) (domain.AuditEntry, error) {
	if mock.RecordActionFunc == nil {
		panic("actionRecorderMock.RecordActionFunc: method is nil but actionRecorder.RecordAction was just called")
	}
	callInfo := struct {
		Ctx context.Context
		In  audit.ActionInput
	}{Ctx: ctx, In: in}
	mock.lockRecordAction.Lock()
	mock.calls.RecordAction = append(mock.calls.RecordAction, callInfo)
	mock.lockRecordAction.Unlock()
	return mock.RecordActionFunc(ctx, in)
}

func (mock *actionRecorderMock) RecordActionCalls() []struct {
	Ctx context.Context
	In  audit.ActionInput
} {
	mock.lockRecordAction.RLock()
	calls := mock.calls.RecordAction
	mock.lockRecordAction.RUnlock()
	return calls
}
