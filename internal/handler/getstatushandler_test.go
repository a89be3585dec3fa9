package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/agent/ai"
	"github.com/deskbothq/deskbot/internal/automation"
	"github.com/deskbothq/deskbot/internal/status"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type fixedProvider struct{ probeErr error }

func (p *fixedProvider) ID() string { return "test" }

func (p *fixedProvider) Complete(ctx context.Context, _ *ai.Request) (string, error) {
	return "ok", nil
}

func (p *fixedProvider) Probe(ctx context.Context) error { return p.probeErr }

func newStatusSvcCtx(t *testing.T, probeErr error) *svc.ServiceContext {
	t.Helper()
	bridge := agent.NewBridge(&fixedProvider{probeErr: probeErr}, agent.Options{})
	exec := automation.NewExecutor(&automation.NopBackend{}, automation.ExecutorOptions{})
	t.Cleanup(exec.Shutdown)
	bounds := &automation.BoundsHint{}
	return &svc.ServiceContext{
		Version:  "test",
		Bridge:   bridge,
		Executor: exec,
		Bounds:   bounds,
		Status:   status.NewAggregator(bridge, exec, bounds, status.Options{}),
	}
}

func TestGetStatusHandlerAlways200(t *testing.T) {
	svcCtx := newStatusSvcCtx(t, errors.New("api key rejected"))

	w := httptest.NewRecorder()
	GetStatusHandler(svcCtx)(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, degraded health must still be 200", w.Code)
	}
	var resp types.BotStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AgentReachable {
		t.Error("agent reported reachable")
	}
	if !resp.AutomationReady {
		t.Error("automation reported not ready")
	}
	if resp.LastError == "" {
		t.Error("probe failure missing from last_error")
	}
}

func TestHealthCheckHandler(t *testing.T) {
	svcCtx := newStatusSvcCtx(t, nil)
	svcCtx.Version = "1.2.3"

	w := httptest.NewRecorder()
	HealthCheckHandler(svcCtx)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Version != "1.2.3" || resp.Provider != "test" {
		t.Errorf("resp = %+v", resp)
	}
}
