package middleware

import (
	"context"
	"sync"

	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
)

var _ captureDispatcher = &captureDispatcherMock{}

type captureDispatcherMock struct {
	DispatchFunc func(ctx context.Context, c audit.HTTPCapture) bool

	calls struct {
		Dispatch []struct {
			Ctx context.Context
			C   audit.HTTPCapture
		}
	}
	lockDispatch sync.RWMutex
}

func (mock *captureDispatcherMock) Dispatch(ctx context.Context, c audit.HTTPCapture) bool {
	if mock.DispatchFunc == nil {
		panic("captureDispatcherMock.DispatchFunc: method is nil but captureDispatcher.Dispatch was just called")
	}
	callInfo := struct {
		Ctx context.Context
		C   audit.HTTPCapture
	}{Ctx: ctx, C: c}
	mock.lockDispatch.Lock()
	mock.calls.Dispatch = append(mock.calls.Dispatch, callInfo)
	mock.lockDispatch.Unlock()
	return mock.DispatchFunc(ctx, c)
}

func (mock *captureDispatcherMock) DispatchCalls() []struct {
	Ctx context.Context
	C   audit.HTTPCapture
} {
	mock.lockDispatch.RLock()
	calls := mock.calls.Dispatch
	mock.lockDispatch.RUnlock()
	return calls
}
