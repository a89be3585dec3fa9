package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/deskbothq/deskbot/internal/types"
)

func TestExecutorRunsActionsInOrder(t *testing.T) {
	backend := &NopBackend{}
	e := NewExecutor(backend, ExecutorOptions{})
	defer e.Shutdown()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := e.Execute(ctx, &TypeText{Text: fmt.Sprintf("msg-%d", i)}); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}

	calls := backend.Calls()
	if len(calls) != 5 {
		t.Fatalf("backend saw %d calls, want 5", len(calls))
	}
	for i, call := range calls {
		if want := fmt.Sprintf("type(msg-%d)", i); call != want {
			t.Errorf("call %d = %q, want %q", i, call, want)
		}
	}
}

func TestExecutorSerializesConcurrentCallers(t *testing.T) {
	backend := &NopBackend{}
	e := NewExecutor(backend, ExecutorOptions{QueueSize: 64})
	defer e.Shutdown()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := e.Execute(context.Background(), &TypeText{Text: fmt.Sprintf("c%d", i)}); err != nil {
				t.Errorf("execute: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// Every call was dispatched exactly once; order across goroutines is
	// whatever the queue saw, but nothing interleaves or drops.
	if calls := backend.Calls(); len(calls) != n {
		t.Fatalf("backend saw %d calls, want %d", len(calls), n)
	}
}

func TestExecutorWrapsBackendFailures(t *testing.T) {
	backend := &NopBackend{Fail: errors.New("input synthesis rejected")}
	e := NewExecutor(backend, ExecutorOptions{})
	defer e.Shutdown()

	_, err := e.Execute(context.Background(), &Click{})
	var ae *types.AutomationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected automation error, got %v", err)
	}
}

func TestExecutorTimesOutSlowBackend(t *testing.T) {
	e := NewExecutor(&stallBackend{}, ExecutorOptions{Timeout: 20 * time.Millisecond})
	defer e.Shutdown()

	_, err := e.Execute(context.Background(), &Click{})
	var ae *types.AutomationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected automation error, got %v", err)
	}
}

func TestExecutorCancelledBeforeDispatch(t *testing.T) {
	backend := &NopBackend{}
	e := NewExecutor(backend, ExecutorOptions{})
	defer e.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, &Click{})
	var ae *types.AutomationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected automation error, got %v", err)
	}
	// Nothing may have reached the native layer. A request racing its own
	// cancellation can win the enqueue select, so the pump re-checks.
	time.Sleep(50 * time.Millisecond)
	if calls := backend.Calls(); len(calls) != 0 {
		t.Errorf("backend saw %v after cancellation", calls)
	}
}

func TestExecutorRejectsAfterShutdown(t *testing.T) {
	e := NewExecutor(&NopBackend{}, ExecutorOptions{})
	e.Shutdown()

	if _, err := e.Execute(context.Background(), &Click{}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestExecutorReleasesWaiterOnContextExpiry(t *testing.T) {
	e := NewExecutor(&stallBackend{}, ExecutorOptions{Timeout: 500 * time.Millisecond})
	defer e.Shutdown()

	// Occupy the pump with a slow click.
	started := make(chan struct{})
	go func() {
		close(started)
		e.Execute(context.Background(), &Click{})
	}()
	<-started

	// A second caller with a short deadline must get its answer on that
	// deadline, not when the in-flight click finishes.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	begin := time.Now()
	_, err := e.Execute(ctx, &TypeText{Text: "hi"})
	elapsed := time.Since(begin)

	var ae *types.AutomationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected automation error, got %v", err)
	}
	if elapsed > 300*time.Millisecond {
		t.Fatalf("caller held for %v past its 50ms deadline", elapsed)
	}
}

// stallBackend blocks every call until the call context expires.
type stallBackend struct{ NopBackend }

func (b *stallBackend) Click(ctx context.Context, button string, count int) error {
	<-ctx.Done()
	return ctx.Err()
}
