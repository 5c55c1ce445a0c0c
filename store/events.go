package store

import "github.com/tailored-agentic-units/draftstate/observability"

// Provider event types.
const (
	EventProviderCreate observability.EventType = "store.provider.create"
	EventProviderClose  observability.EventType = "store.provider.close"
	EventOpsBuild       observability.EventType = "store.ops.build"
	EventOperationApply observability.EventType = "store.operation.apply"
	EventOperationNoop  observability.EventType = "store.operation.noop"
	EventOperationError observability.EventType = "store.operation.error"
	EventHandlerPanic   observability.EventType = "store.handler.panic"
	EventInitPanic      observability.EventType = "store.init.panic"
)

const eventSource = "store.Provider"
