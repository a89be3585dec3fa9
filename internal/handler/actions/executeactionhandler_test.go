package actions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/agent/ai"
	"github.com/deskbothq/deskbot/internal/automation"
	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/status"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type silentProvider struct{}

func (p *silentProvider) ID() string { return "test" }

func (p *silentProvider) Complete(ctx context.Context, _ *ai.Request) (string, error) {
	return "ok", nil
}

func (p *silentProvider) Probe(ctx context.Context) error { return nil }

func newTestSvcCtx(t *testing.T, backend *automation.NopBackend) *svc.ServiceContext {
	t.Helper()
	bridge := agent.NewBridge(&silentProvider{}, agent.Options{})
	exec := automation.NewExecutor(backend, automation.ExecutorOptions{})
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

func execute(t *testing.T, svcCtx *svc.ServiceContext, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/automation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ExecuteActionHandler(svcCtx)(w, req)
	return w
}

func TestExecuteActionHandler(t *testing.T) {
	backend := &automation.NopBackend{Width: 2560, Height: 1440}
	svcCtx := newTestSvcCtx(t, backend)

	w := execute(t, svcCtx, `{"action": "screen_size"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp types.ExecuteAutomationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Content != "2560x1440" {
		t.Errorf("content = %q", resp.Content)
	}

	// The query refreshed the bounds hint, so an oversized move now fails
	// at validation and never reaches the backend.
	w = execute(t, svcCtx, `{"action": "move_mouse", "params": {"x": 9000, "y": 10}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	for _, call := range backend.Calls() {
		if strings.HasPrefix(call, "move_mouse") {
			t.Errorf("invalid move reached the backend: %v", backend.Calls())
		}
	}
}

func TestExecuteActionHandlerUnknownAction(t *testing.T) {
	svcCtx := newTestSvcCtx(t, &automation.NopBackend{})

	w := execute(t, svcCtx, `{"action": "format_disk"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var envelope httputil.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Kind != "validation_error" || envelope.Field != "action" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestExecuteActionHandlerBackendFailure(t *testing.T) {
	backend := &automation.NopBackend{Fail: errors.New("input device rejected event")}
	svcCtx := newTestSvcCtx(t, backend)

	w := execute(t, svcCtx, `{"action": "click"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var envelope httputil.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Kind != "automation_error" {
		t.Errorf("kind = %q", envelope.Kind)
	}
}

func TestListActionsHandler(t *testing.T) {
	svcCtx := newTestSvcCtx(t, &automation.NopBackend{})

	w := httptest.NewRecorder()
	ListActionsHandler(svcCtx)(w, httptest.NewRequest(http.MethodGet, "/api/v1/automation/actions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp types.ListActionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Actions) != 6 {
		t.Fatalf("catalog has %d actions, want 6", len(resp.Actions))
	}
	for _, action := range resp.Actions {
		if action.Name == "" || action.Description == "" {
			t.Errorf("incomplete descriptor: %+v", action)
		}
	}
}
