package ai

import "context"

// EchoProvider is the offline stub variant: it answers without any
// external service so the app keeps working with no API key configured.
type EchoProvider struct{}

func NewEchoProvider() *EchoProvider { return &EchoProvider{} }

func (p *EchoProvider) ID() string { return "echo" }

func (p *EchoProvider) Complete(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			last = req.Messages[i].Content
			break
		}
	}
	if last == "" {
		return "I'm running without an AI provider. Set ANTHROPIC_API_KEY or OPENAI_API_KEY to enable replies.", nil
	}
	return "No AI provider is configured, so I can only echo you: " + last, nil
}

func (p *EchoProvider) Probe(ctx context.Context) error { return ctx.Err() }
