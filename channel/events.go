package channel

import "github.com/tailored-agentic-units/draftstate/observability"

// Channel event types.
const (
	EventNoProvider   observability.EventType = "channel.no_provider"
	EventScopeProvide observability.EventType = "channel.scope.provide"
	EventScopeRemove  observability.EventType = "channel.scope.remove"
)

const eventSource = "channel.Channel"
