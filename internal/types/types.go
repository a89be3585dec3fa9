// Package types holds the request and response shapes of the local HTTP
// boundary, plus the error taxonomy crossing it.
package types

import (
	"encoding/json"
	"time"
)

// Turn is the wire rendering of one conversation message.
type Turn struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SendMessageRequest submits a user message to the conversation.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse returns the agent's reply plus the two turns this
// exchange appended.
type SendMessageResponse struct {
	Reply string `json:"reply"`
	Turns []Turn `json:"turns"`
}

// HistoryResponse returns the full conversation log in order.
type HistoryResponse struct {
	Turns []Turn `json:"turns"`
}

// ClearHistoryResponse reports how many turns were dropped.
type ClearHistoryResponse struct {
	Cleared int `json:"cleared"`
}

// BotStatusResponse is the aggregated health report.
type BotStatusResponse struct {
	AgentReachable  bool   `json:"agent_reachable"`
	AutomationReady bool   `json:"automation_ready"`
	LastError       string `json:"last_error,omitempty"`
}

// ExecuteAutomationRequest names an automation action and its parameters.
type ExecuteAutomationRequest struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ExecuteAutomationResponse carries the action's result summary and its
// action-dependent payload.
type ExecuteAutomationResponse struct {
	Action  string          `json:"action"`
	Content string          `json:"content"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ActionInfo describes one catalog entry.
type ActionInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`
}

// ListActionsResponse enumerates the automation catalog.
type ListActionsResponse struct {
	Actions []ActionInfo `json:"actions"`
}

// HealthResponse answers the liveness endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}
