package events

// Topics published by the core.
const (
	// TopicTurnCreated carries an agent.Turn each time the bridge
	// appends a turn (user or assistant) to the conversation log.
	TopicTurnCreated = "chat.turn.created"

	// TopicStatusChanged carries a status.Snapshot whenever a probe
	// cycle produces a different snapshot than the previous one.
	TopicStatusChanged = "status.changed"
)
