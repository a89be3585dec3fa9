// Package status reports the live health of the bot's two dependencies,
// the external agent and the native automation layer.
package status

import (
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/syncx"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/automation"
	"github.com/deskbothq/deskbot/internal/events"
)

const (
	defaultProbeTimeout = 1500 * time.Millisecond
	defaultFreshness    = 2 * time.Second
)

// Snapshot is a point-in-time health report. It is always produced, even
// when every probe fails; degradation is data, not an error.
type Snapshot struct {
	AgentReachable  bool   `json:"agent_reachable"`
	AutomationReady bool   `json:"automation_ready"`
	LastError       string `json:"last_error,omitempty"`
}

// Options configures an Aggregator. Zero values pick defaults.
type Options struct {
	ProbeTimeout time.Duration // per-probe budget
	Freshness    time.Duration // window during which snapshots are served from cache
	Subject      *events.Subject
}

// Aggregator probes the agent and the automation layer concurrently and
// caches the combined snapshot. Probes are cheap reachability checks, not
// generation round-trips or input mutations, and run detached from any
// caller's request lifetime so a disconnected client cannot poison the
// cache. Callers arriving while a probe is in flight share it instead of
// piling up their own.
type Aggregator struct {
	bridge *agent.Bridge
	exec   *automation.Executor
	hint   *automation.BoundsHint
	opts   Options

	flight syncx.SingleFlight

	mu       sync.Mutex
	last     Snapshot
	lastAt   time.Time
	haveLast bool
}

// NewAggregator wires an aggregator over the bridge and executor. The
// bounds hint is refreshed as a side effect of each automation probe.
func NewAggregator(bridge *agent.Bridge, exec *automation.Executor, hint *automation.BoundsHint, opts Options) *Aggregator {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.Freshness <= 0 {
		opts.Freshness = defaultFreshness
	}
	return &Aggregator{
		bridge: bridge,
		exec:   exec,
		hint:   hint,
		opts:   opts,
		flight: syncx.NewSingleFlight(),
	}
}

// Snapshot returns the current health report, probing only when the cached
// snapshot has gone stale. It never fails and never blocks longer than the
// probe budget; probe errors become fields.
func (a *Aggregator) Snapshot() Snapshot {
	if snap, ok := a.cached(); ok {
		return snap
	}
	val, _ := a.flight.Do("probe", func() (any, error) {
		// A caller that queued behind the winning flight finds the cache
		// already fresh.
		if snap, ok := a.cached(); ok {
			return snap, nil
		}
		snap := a.probe()
		a.store(snap)
		return snap, nil
	})
	return val.(Snapshot)
}

// Invalidate drops the cache so the next Snapshot call probes again.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.haveLast = false
}

func (a *Aggregator) cached() (Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.haveLast && time.Since(a.lastAt) < a.opts.Freshness {
		return a.last, true
	}
	return Snapshot{}, false
}

func (a *Aggregator) store(snap Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.haveLast || snap != a.last {
		a.emit(snap)
	}
	a.last = snap
	a.lastAt = time.Now()
	a.haveLast = true
}

// probe runs both checks concurrently, each under its own budget. A slow
// agent never delays the automation verdict and vice versa.
func (a *Aggregator) probe() Snapshot {
	var (
		wg            sync.WaitGroup
		agentErr      error
		automationErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		probeCtx, cancel := context.WithTimeout(context.Background(), a.opts.ProbeTimeout)
		defer cancel()
		agentErr = a.bridge.Probe(probeCtx)
	}()
	go func() {
		defer wg.Done()
		probeCtx, cancel := context.WithTimeout(context.Background(), a.opts.ProbeTimeout)
		defer cancel()
		automationErr = a.probeAutomation(probeCtx)
	}()
	wg.Wait()

	snap := Snapshot{
		AgentReachable:  agentErr == nil,
		AutomationReady: automationErr == nil,
	}
	// One slot, most recent failure wins; the automation verdict is the
	// fresher of the two when both probes fail in the same cycle.
	if agentErr != nil {
		logx.Debugf("status: agent probe failed: %v", agentErr)
		snap.LastError = agentErr.Error()
	}
	if automationErr != nil {
		logx.Debugf("status: automation probe failed: %v", automationErr)
		snap.LastError = automationErr.Error()
	}
	return snap
}

// probeAutomation runs a screen_size query through the real executor
// queue, exercising the same dispatch path as user actions and refreshing
// the coordinate bounds hint on success.
func (a *Aggregator) probeAutomation(ctx context.Context) error {
	action, err := automation.Decode("screen_size", nil, a.hint)
	if err != nil {
		return err
	}
	_, err = a.exec.Execute(ctx, action)
	return err
}

func (a *Aggregator) emit(snap Snapshot) {
	if a.opts.Subject == nil {
		return
	}
	if err := events.Emit(a.opts.Subject, events.TopicStatusChanged, snap); err != nil {
		logx.Errorf("status: emit status event: %v", err)
	}
}
