// Package ai defines the conversational responder capability and its
// concrete variants: the Anthropic and OpenAI APIs, a local Ollama
// instance, and an offline echo stub. The bridge depends only on the
// Provider interface, never on a concrete client.
package ai

import "context"

// Role values for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of context handed to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single-shot completion request: the ordered context window
// plus an optional system prompt.
type Request struct {
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// Provider is the conversational responder capability.
type Provider interface {
	// ID returns the provider identifier (e.g. "anthropic", "openai").
	ID() string

	// Complete sends the context window and returns the assistant reply.
	Complete(ctx context.Context, req *Request) (string, error)

	// Probe is a lightweight reachability check, never a full
	// generation round-trip. It must respect the context deadline.
	Probe(ctx context.Context) error
}
