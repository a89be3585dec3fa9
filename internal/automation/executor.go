package automation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/types"
)

const (
	defaultQueueSize = 32
	defaultTimeout   = 15 * time.Second
)

// ErrStopped is returned for requests submitted after Shutdown.
var ErrStopped = errors.New("automation executor stopped")

// Executor serializes all automation actions through a single pump
// goroutine pinned to one OS thread. Native input-injection APIs demand
// calls from a single designated thread; any number of producers submit
// over the request channel and block until their action completes.
//
// Every action is fully serialized in arrival order, read-only queries
// included. Letting screen_size/mouse_position short-circuit past queued
// mutations would be a legal relaxation, but one queue keeps observable
// behavior predictable.
type Executor struct {
	backend Backend
	timeout time.Duration

	reqCh chan *execRequest
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

type execRequest struct {
	id     string
	ctx    context.Context
	action Action
	done   chan execOutcome
}

type execOutcome struct {
	result *Result
	err    error
}

// ExecutorOptions tunes the executor. Zero values pick defaults.
type ExecutorOptions struct {
	Timeout   time.Duration // per-action native call budget
	QueueSize int
}

// NewExecutor starts the pump goroutine and returns a ready executor.
func NewExecutor(backend Backend, opts ExecutorOptions) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	e := &Executor{
		backend: backend,
		timeout: opts.Timeout,
		reqCh:   make(chan *execRequest, opts.QueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go e.pump()
	return e
}

// Execute submits an action and blocks until the native call completes or
// the caller's context expires. A request abandoned while still queued
// never reaches the backend; once the pump has dispatched it, the native
// call runs to completion or to the per-action timeout (partial keystrokes
// cannot be undone), but the caller is released immediately either way.
func (e *Executor) Execute(ctx context.Context, action Action) (*Result, error) {
	req := &execRequest{
		id:     uuid.New().String()[:8],
		ctx:    ctx,
		action: action,
		done:   make(chan execOutcome, 1),
	}
	select {
	case e.reqCh <- req:
	case <-e.quit:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, &types.AutomationError{Reason: fmt.Sprintf("cancelled before dispatch: %v", ctx.Err())}
	}
	// done is buffered, so the pump's send never blocks on a caller that
	// has already walked away.
	select {
	case out := <-req.done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, &types.AutomationError{Reason: fmt.Sprintf("abandoned while waiting: %v", ctx.Err())}
	}
}

// Shutdown stops the pump. Queued requests resolve with ErrStopped.
func (e *Executor) Shutdown() {
	e.once.Do(func() { close(e.quit) })
	<-e.done
}

func (e *Executor) pump() {
	// The pump owns the native handle for its whole life; pinning the
	// goroutine gives every backend call the same OS thread.
	runtime.LockOSThread()
	defer close(e.done)

	for {
		select {
		case req := <-e.reqCh:
			req.done <- e.serve(req)
		case <-e.quit:
			e.drain()
			return
		}
	}
}

func (e *Executor) drain() {
	for {
		select {
		case req := <-e.reqCh:
			req.done <- execOutcome{err: ErrStopped}
		default:
			return
		}
	}
}

func (e *Executor) serve(req *execRequest) execOutcome {
	// Cancellation window closes here: a request abandoned while queued
	// never reaches the backend.
	if err := req.ctx.Err(); err != nil {
		return execOutcome{err: &types.AutomationError{Reason: fmt.Sprintf("cancelled before dispatch: %v", err)}}
	}

	logx.Debugf("automation: [%s] dispatching %s on %s backend", req.id, req.action.Name(), e.backend.ID())

	// The call budget is detached from the caller's context on purpose:
	// once dispatched, only the timeout ends a native call.
	callCtx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	start := time.Now()
	result, err := req.action.Perform(callCtx, e.backend)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &types.AutomationError{Reason: fmt.Sprintf("%s timed out after %s", req.action.Name(), e.timeout)}
		}
		var ae *types.AutomationError
		if !errors.As(err, &ae) {
			err = &types.AutomationError{Reason: err.Error()}
		}
		logx.Errorf("automation: [%s] %s failed: %v", req.id, req.action.Name(), err)
		return execOutcome{err: err}
	}

	logx.Debugf("automation: [%s] %s completed in %s", req.id, req.action.Name(), time.Since(start))
	return execOutcome{result: result}
}
