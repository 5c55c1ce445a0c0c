// Package observability carries the diagnostic events emitted by state
// providers and channels. Level values follow OpenTelemetry SeverityNumbers so
// events can be forwarded to an OTel collector without translation.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is an event severity in OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), slog.LevelError
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps the level onto a slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType names an event. Packages declare their own constants, for
// example "store.operation.error".
type EventType string

// Event describes something a provider or channel did. Data holds telemetry
// (operation names, versions, error text), never the state value itself.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events. Implementations must not panic and must not
// block for long: providers call OnEvent synchronously after releasing their
// lock.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
