package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements the Provider interface for Ollama (local
// models) using the official client.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "qwen3:4b"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		parsedURL, _ = url.Parse("http://localhost:11434")
	}

	httpClient := &http.Client{
		Timeout: 5 * time.Minute, // local inference can be slow
	}

	return &OllamaProvider{
		client: api.NewClient(parsedURL, httpClient),
		model:  model,
	}
}

func (p *OllamaProvider) ID() string { return "ollama" }

// Complete sends the context window and collects the reply.
func (p *OllamaProvider) Complete(ctx context.Context, req *Request) (string, error) {
	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   &stream,
	}

	var sb strings.Builder
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return sb.String(), nil
}

// Probe hits the Ollama heartbeat endpoint.
func (p *OllamaProvider) Probe(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama: %w", err)
	}
	return nil
}
