package syssched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/open-control-systems/mdnssd/components/status"
	"github.com/stretchr/testify/require"
)

type testAsyncTaskRunnerTask struct {
	mu        sync.Mutex
	err       error
	callCount int
}

func (t *testAsyncTaskRunnerTask) Run() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.callCount++

	return t.err
}

func (t *testAsyncTaskRunnerTask) getCallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.callCount
}

type testAsyncTaskRunnerErrorHandler struct {
	mu   sync.Mutex
	errs []error
}

func (h *testAsyncTaskRunnerErrorHandler) HandleError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errs = append(h.errs, err)
}

func (h *testAsyncTaskRunnerErrorHandler) getErrCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.errs)
}

func TestAsyncTaskRunnerRunsImmediatelyAndOnTick(t *testing.T) {
	task := &testAsyncTaskRunnerTask{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewAsyncTaskRunner(ctx, task, nil, time.Millisecond*20)
	runner.Start()

	for task.getCallCount() < 3 {
		time.Sleep(time.Millisecond * 10)
	}

	cancel()
	require.Nil(t, runner.Close())
}

func TestAsyncTaskRunnerReportsTaskErrors(t *testing.T) {
	task := &testAsyncTaskRunnerTask{err: status.StatusTimeout}
	handler := &testAsyncTaskRunnerErrorHandler{}

	ctx, cancel := context.WithCancel(context.Background())

	runner := NewAsyncTaskRunner(ctx, task, handler, time.Millisecond*20)
	runner.Start()

	for handler.getErrCount() < 2 {
		time.Sleep(time.Millisecond * 10)
	}

	cancel()
	require.Nil(t, runner.Close())
}
