package audit

import (
	"context"
	"sync"
)

var _ httpRecorder = &httpRecorderMock{}

type httpRecorderMock struct {
	RecordHTTPFunc func(ctx context.Context, c HTTPCapture) error

	calls struct {
		RecordHTTP []struct {
			Ctx context.Context
			C   HTTPCapture
		}
	}
	lockRecordHTTP sync.RWMutex
}

func (mock *httpRecorderMock) RecordHTTP(ctx context.Context, c HTTPCapture) error {
	if mock.RecordHTTPFunc == nil {
		panic("httpRecorderMock.RecordHTTPFunc: method is nil but httpRecorder.RecordHTTP was just called")
	}
	callInfo := struct {
		Ctx context.Context
		C   HTTPCapture
	}{Ctx: ctx, C: c}
	mock.lockRecordHTTP.Lock()
	mock.calls.RecordHTTP = append(mock.calls.RecordHTTP, callInfo)
	mock.lockRecordHTTP.Unlock()
	return mock.RecordHTTPFunc(ctx, c)
}

func (mock *httpRecorderMock) RecordHTTPCalls() []struct {
	Ctx context.Context
	C   HTTPCapture
} {
	mock.lockRecordHTTP.RLock()
	calls := mock.calls.RecordHTTP
	mock.lockRecordHTTP.RUnlock()
	return calls
}

var _ commandRecorder = &commandRecorderMock{}

type commandRecorderMock struct {
	RecordCommandFunc func(ctx context.Context, c CommandCapture) error

	calls struct {
		RecordCommand []struct {
			Ctx context.Context
			C   CommandCapture
		}
	}
	lockRecordCommand sync.RWMutex
}

func (mock *commandRecorderMock) RecordCommand(ctx context.Context, c CommandCapture) error {
	if mock.RecordCommandFunc == nil {
		panic("commandRecorderMock.RecordCommandFunc: method is nil but commandRecorder.RecordCommand was just called")
	}
	callInfo := struct {
		Ctx context.Context
		C   CommandCapture
	}{Ctx: ctx, C: c}
	mock.lockRecordCommand.Lock()
	mock.calls.RecordCommand = append(mock.calls.RecordCommand, callInfo)
	mock.lockRecordCommand.Unlock()
	return mock.RecordCommandFunc(ctx, c)
}

func (mock *commandRecorderMock) RecordCommandCalls() []struct {
	Ctx context.Context
	C   CommandCapture
} {
	mock.lockRecordCommand.RLock()
	calls := mock.calls.RecordCommand
	mock.lockRecordCommand.RUnlock()
	return calls
}
