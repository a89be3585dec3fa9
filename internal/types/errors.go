package types

import "fmt"

// The error taxonomy crossing the boundary. Every failure surfaces as one
// of these three kinds; nothing is coerced into a success payload.

// ValidationError reports malformed or out-of-range input. No component
// with side effects has been touched when one of these is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %q: %s", e.Field, e.Reason)
}

// AutomationError reports a native automation call that failed or timed
// out. Mutation actions may have partially executed on the OS side; the
// error is always surfaced rather than hidden.
type AutomationError struct {
	Reason string
}

func (e *AutomationError) Error() string {
	return "automation failed: " + e.Reason
}

// AgentError reports an unreachable external agent, a timeout, or an
// invalid reply. The user's turn stays in the conversation log so a
// resend reuses context.
type AgentError struct {
	Reason string
}

func (e *AgentError) Error() string {
	return "agent failed: " + e.Reason
}
