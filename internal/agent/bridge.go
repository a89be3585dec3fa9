// Package agent owns the conversation: an ordered, append-only turn log
// with exactly one writer, bridged to a conversational responder.
package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/agent/ai"
	"github.com/deskbothq/deskbot/internal/events"
	"github.com/deskbothq/deskbot/internal/types"
)

const defaultTimeout = 120 * time.Second

// Turn is one message in the conversation's ordered history. IDs are
// strictly increasing and never reused, even across Clear.
type Turn struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Options configures a Bridge.
type Options struct {
	SystemPrompt  string
	HistoryWindow int           // turns per dispatch; 0 sends the full log
	Timeout       time.Duration // external agent call budget
	Subject       *events.Subject
}

// Bridge is the single owner of the turn log. All access goes through
// serialized calls; the log is never exposed as a mutable shared list.
type Bridge struct {
	provider ai.Provider
	opts     Options

	// One mutex covers both the log and dispatch: send N+1 cannot start
	// until send N has appended its reply, so the agent always sees a
	// consistent, monotonically growing context.
	mu     sync.Mutex
	nextID int64
	turns  []Turn
}

// NewBridge creates a bridge over the given responder.
func NewBridge(provider ai.Provider, opts Options) *Bridge {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Bridge{provider: provider, opts: opts}
}

// ProviderID names the underlying responder variant.
func (b *Bridge) ProviderID() string { return b.provider.ID() }

// Send appends the user turn, dispatches the windowed history to the
// responder, appends the reply, and returns it together with the turns
// this exchange added. On responder failure the user turn stays recorded
// so a resend reuses context.
func (b *Bridge) Send(ctx context.Context, text string) (string, []Turn, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, &types.ValidationError{Field: "message", Reason: "message must not be empty"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	userTurn := b.append(ai.RoleUser, text)
	window := b.window()

	callCtx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	reply, err := b.provider.Complete(callCtx, &ai.Request{
		System:   b.opts.SystemPrompt,
		Messages: window,
	})
	if err != nil {
		logx.WithContext(ctx).Errorf("agent: %s dispatch failed: %v", b.provider.ID(), err)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", nil, &types.AgentError{Reason: "agent timed out after " + b.opts.Timeout.String()}
		}
		return "", nil, &types.AgentError{Reason: err.Error()}
	}
	if strings.TrimSpace(reply) == "" {
		return "", nil, &types.AgentError{Reason: "agent returned an empty reply"}
	}

	botTurn := b.append(ai.RoleAssistant, reply)
	return reply, []Turn{userTurn, botTurn}, nil
}

// append adds a turn and emits it. Callers hold b.mu.
func (b *Bridge) append(role, content string) Turn {
	b.nextID++
	turn := Turn{
		ID:        b.nextID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	b.turns = append(b.turns, turn)
	if b.opts.Subject != nil {
		if err := events.Emit(b.opts.Subject, events.TopicTurnCreated, turn); err != nil {
			logx.Errorf("agent: emit turn event: %v", err)
		}
	}
	return turn
}

// window returns the recent turns to dispatch, always including the turn
// just appended.
func (b *Bridge) window() []ai.Message {
	turns := b.turns
	if n := b.opts.HistoryWindow; n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]ai.Message, len(turns))
	for i, t := range turns {
		out[i] = ai.Message{Role: t.Role, Content: t.Content}
	}
	return out
}

// History returns a transient copy of the turn log for rendering.
func (b *Bridge) History() []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// TurnCount returns the current log length.
func (b *Bridge) TurnCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}

// Clear empties the log and reports how many turns were dropped. IDs keep
// rising so no ID is ever reused.
func (b *Bridge) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.turns)
	b.turns = nil
	return n
}

// Probe checks responder reachability without a generation round-trip.
func (b *Bridge) Probe(ctx context.Context) error {
	return b.provider.Probe(ctx)
}
