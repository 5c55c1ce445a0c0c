package store

import "github.com/tailored-agentic-units/draftstate/observability"

// ErrorHandler receives errors returned or panicked by update functions.
type ErrorHandler func(err error)

type options struct {
	id           string
	name         string
	observer     observability.Observer
	onError      ErrorHandler
	alwaysCommit bool
}

// Option configures a Provider. Options are applied after config-driven
// defaults and override them.
type Option func(*options)

// WithName labels the provider in events.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithID overrides the generated provider ID.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithObserver replaces the default slog observer.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithErrorHandler sets the initial error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.onError = h }
}

// WithAlwaysCommit disables no-op detection: every successful operation
// publishes a new version even when nothing changed.
func WithAlwaysCommit() Option {
	return func(o *options) { o.alwaysCommit = true }
}
