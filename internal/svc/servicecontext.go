package svc

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/agent/ai"
	"github.com/deskbothq/deskbot/internal/automation"
	"github.com/deskbothq/deskbot/internal/config"
	"github.com/deskbothq/deskbot/internal/events"
	"github.com/deskbothq/deskbot/internal/status"
)

// ServiceContext wires the long-lived components behind the HTTP boundary.
type ServiceContext struct {
	Config  config.Config
	Version string

	Subject  *events.Subject
	Bridge   *agent.Bridge
	Executor *automation.Executor
	Bounds   *automation.BoundsHint
	Status   *status.Aggregator
}

// NewServiceContext builds the full component graph from config.
func NewServiceContext(c config.Config, version string) (*ServiceContext, error) {
	// Sync delivery keeps per-subscriber event order: the two turns of one
	// exchange must reach a websocket client user-first.
	subject := events.NewSubject(events.WithSyncDelivery(), events.WithLogger(slog.Default()))

	provider, err := buildProvider(c.Agent)
	if err != nil {
		return nil, err
	}
	logx.Infof("svc: agent provider %s", provider.ID())

	bridge := agent.NewBridge(provider, agent.Options{
		SystemPrompt:  c.Agent.SystemPrompt,
		HistoryWindow: c.Agent.HistoryWindow,
		Timeout:       time.Duration(c.Agent.TimeoutSeconds) * time.Second,
		Subject:       subject,
	})

	backend, err := automation.DetectBackend()
	if err != nil {
		// Start degraded rather than not at all; status reports it.
		logx.Errorf("svc: automation unavailable: %v", err)
		backend = &automation.UnavailableBackend{Err: err}
	}
	logx.Infof("svc: automation backend %s", backend.ID())

	bounds := &automation.BoundsHint{}
	executor := automation.NewExecutor(backend, automation.ExecutorOptions{
		Timeout:   time.Duration(c.Automation.TimeoutSeconds) * time.Second,
		QueueSize: c.Automation.QueueSize,
	})

	aggregator := status.NewAggregator(bridge, executor, bounds, status.Options{
		ProbeTimeout: time.Duration(c.Status.ProbeTimeoutMS) * time.Millisecond,
		Freshness:    time.Duration(c.Status.FreshnessMS) * time.Millisecond,
		Subject:      subject,
	})

	return &ServiceContext{
		Config:   c,
		Version:  version,
		Subject:  subject,
		Bridge:   bridge,
		Executor: executor,
		Bounds:   bounds,
		Status:   aggregator,
	}, nil
}

// Close tears down the component graph in dependency order.
func (sc *ServiceContext) Close() {
	sc.Executor.Shutdown()
	sc.Subject.Close()
}

// buildProvider resolves the configured responder. Auto selection prefers
// Anthropic, then OpenAI, by API key presence; with no key it degrades to
// the offline echo responder so the bot stays usable for automation.
func buildProvider(c config.AgentConf) (ai.Provider, error) {
	switch c.Provider {
	case "anthropic":
		return ai.NewAnthropicProvider(keyOr(c.APIKey, "ANTHROPIC_API_KEY"), c.Model), nil
	case "openai":
		return ai.NewOpenAIProvider(keyOr(c.APIKey, "OPENAI_API_KEY"), c.Model), nil
	case "ollama":
		return ai.NewOllamaProvider(c.BaseURL, c.Model), nil
	case "echo":
		return ai.NewEchoProvider(), nil
	case "", "auto":
		if key := keyOr(c.APIKey, "ANTHROPIC_API_KEY"); key != "" {
			return ai.NewAnthropicProvider(key, c.Model), nil
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return ai.NewOpenAIProvider(key, c.Model), nil
		}
		logx.Info("svc: no agent API key found, using offline echo provider")
		return ai.NewEchoProvider(), nil
	default:
		return nil, fmt.Errorf("unknown agent provider %q", c.Provider)
	}
}

func keyOr(configured, envVar string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv(envVar)
}
