package status

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/agent/ai"
	"github.com/deskbothq/deskbot/internal/automation"
)

type probeProvider struct {
	probes   atomic.Int64
	probeErr error
	stall    bool // Probe blocks until its context expires
}

func (p *probeProvider) ID() string { return "probe" }

func (p *probeProvider) Complete(ctx context.Context, _ *ai.Request) (string, error) {
	return "ok", nil
}

func (p *probeProvider) Probe(ctx context.Context) error {
	p.probes.Add(1)
	if p.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.probeErr
}

func newTestAggregator(t *testing.T, provider ai.Provider, backend automation.Backend, opts Options) (*Aggregator, *automation.BoundsHint) {
	t.Helper()
	bridge := agent.NewBridge(provider, agent.Options{})
	exec := automation.NewExecutor(backend, automation.ExecutorOptions{})
	t.Cleanup(exec.Shutdown)
	hint := &automation.BoundsHint{}
	return NewAggregator(bridge, exec, hint, opts), hint
}

func TestSnapshotHealthy(t *testing.T) {
	agg, hint := newTestAggregator(t, &probeProvider{}, &automation.NopBackend{}, Options{})

	snap := agg.Snapshot()
	if !snap.AgentReachable || !snap.AutomationReady {
		t.Fatalf("snapshot = %+v, want both healthy", snap)
	}
	if snap.LastError != "" {
		t.Errorf("last error = %q, want empty", snap.LastError)
	}
	// The probe's screen_size pass refreshed the coordinate bounds.
	if b := hint.Get(); b == nil || b.Width != 1920 || b.Height != 1080 {
		t.Errorf("bounds hint = %+v", b)
	}
}

func TestSnapshotAgentDownIsNotAnError(t *testing.T) {
	provider := &probeProvider{probeErr: errors.New("connect: no route to host")}
	agg, _ := newTestAggregator(t, provider, &automation.NopBackend{}, Options{})

	snap := agg.Snapshot()
	if snap.AgentReachable {
		t.Error("agent reported reachable")
	}
	if !snap.AutomationReady {
		t.Error("automation verdict dragged down by the agent probe")
	}
	if snap.LastError == "" {
		t.Error("probe failure not surfaced in last error")
	}
}

func TestSnapshotAutomationDown(t *testing.T) {
	backend := &automation.NopBackend{Fail: errors.New("display server gone")}
	agg, _ := newTestAggregator(t, &probeProvider{}, backend, Options{})

	snap := agg.Snapshot()
	if snap.AutomationReady {
		t.Error("automation reported ready")
	}
	if !snap.AgentReachable {
		t.Error("agent verdict dragged down by the automation probe")
	}
}

func TestSnapshotAgentTimeoutBoundedByProbeBudget(t *testing.T) {
	provider := &probeProvider{stall: true}
	agg, _ := newTestAggregator(t, provider, &automation.NopBackend{}, Options{
		ProbeTimeout: 100 * time.Millisecond,
	})

	begin := time.Now()
	snap := agg.Snapshot()
	elapsed := time.Since(begin)

	if snap.AgentReachable {
		t.Error("hung agent reported reachable")
	}
	if !snap.AutomationReady {
		t.Error("automation verdict dragged down by the hung agent probe")
	}
	if snap.LastError == "" {
		t.Error("timeout not surfaced in last error")
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("snapshot took %v, want roughly the 100ms probe budget", elapsed)
	}
}

// slowClickBackend holds every click until its call context expires, so a
// dispatched action keeps the executor pump busy for the full action budget.
type slowClickBackend struct{ automation.NopBackend }

func (b *slowClickBackend) Click(ctx context.Context, button string, count int) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSnapshotNotStalledByInFlightAction(t *testing.T) {
	bridge := agent.NewBridge(&probeProvider{}, agent.Options{})
	exec := automation.NewExecutor(&slowClickBackend{}, automation.ExecutorOptions{
		Timeout: 2 * time.Second,
	})
	t.Cleanup(exec.Shutdown)
	agg := NewAggregator(bridge, exec, &automation.BoundsHint{}, Options{
		ProbeTimeout: 100 * time.Millisecond,
	})

	started := make(chan struct{})
	go func() {
		close(started)
		action, err := automation.Decode("click", nil, nil)
		if err != nil {
			t.Errorf("decode click: %v", err)
			return
		}
		exec.Execute(context.Background(), action)
	}()
	<-started
	time.Sleep(20 * time.Millisecond) // let the click reach the pump

	begin := time.Now()
	snap := agg.Snapshot()
	elapsed := time.Since(begin)

	if elapsed > 500*time.Millisecond {
		t.Fatalf("snapshot took %v behind a busy executor, want roughly the 100ms probe budget", elapsed)
	}
	if !snap.AgentReachable {
		t.Error("agent verdict dragged down by the busy executor")
	}
	if snap.AutomationReady {
		t.Error("automation reported ready while its probe could not be dispatched")
	}
}

func TestSnapshotServedFromCacheWhileFresh(t *testing.T) {
	provider := &probeProvider{}
	agg, _ := newTestAggregator(t, provider, &automation.NopBackend{}, Options{Freshness: time.Minute})

	agg.Snapshot()
	agg.Snapshot()
	agg.Snapshot()
	if got := provider.probes.Load(); got != 1 {
		t.Fatalf("provider probed %d times, want 1", got)
	}

	agg.Invalidate()
	agg.Snapshot()
	if got := provider.probes.Load(); got != 2 {
		t.Fatalf("provider probed %d times after invalidate, want 2", got)
	}
}
