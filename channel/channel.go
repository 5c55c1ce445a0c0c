package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/draftstate/observability"
	"github.com/tailored-agentic-units/draftstate/store"
)

// Source yields the pair a channel hands to consumers. *store.Provider
// implements it.
type Source[T, A any] interface {
	Pair() *store.Pair[T, A]
}

type fixed[T, A any] struct {
	pair *store.Pair[T, A]
}

func (f fixed[T, A]) Pair() *store.Pair[T, A] { return f.pair }

// contextKey is compared by pointer, so every channel gets its own slot.
type contextKey struct {
	name string
}

// Channel is a typed distribution point for [state, operations] pairs.
type Channel[T, A any] struct {
	name     string
	key      *contextKey
	initial  *store.Pair[T, A]
	updaters store.Updaters[T, A]
	observer observability.Observer
}

// Option configures a Channel.
type Option func(*channelOptions)

type channelOptions struct {
	name     string
	observer observability.Observer
}

// WithName labels the channel in errors and events.
func WithName(name string) Option {
	return func(o *channelOptions) { o.name = name }
}

// WithObserver replaces the default slog observer.
func WithObserver(obs observability.Observer) Option {
	return func(o *channelOptions) { o.observer = obs }
}

// New creates a channel and returns it with its default pair. The default
// pair carries initial and no operations; updaters are kept for
// NewProvider and do not populate the default.
func New[T, A any](initial T, updaters store.Updaters[T, A], opts ...Option) (*Channel[T, A], *store.Pair[T, A]) {
	o := channelOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = observability.NewSlogObserver(slog.Default())
	}
	if o.name == "" {
		var zero T
		o.name = fmt.Sprintf("%T", zero)
	}

	initialValue := &store.Pair[T, A]{State: initial}
	c := &Channel[T, A]{
		name:     o.name,
		key:      &contextKey{name: o.name},
		initial:  initialValue,
		updaters: updaters,
		observer: o.observer,
	}
	return c, initialValue
}

// Name returns the channel label used in logs and errors.
func (c *Channel[T, A]) Name() string { return c.name }

// Default returns the pair consumers see when no provider is installed.
func (c *Channel[T, A]) Default() *store.Pair[T, A] { return c.initial }

// Updaters returns the updaters the channel was created with.
func (c *Channel[T, A]) Updaters() store.Updaters[T, A] { return c.updaters }

// NewProvider starts a live provider seeded with the channel's initial
// state and updaters.
func (c *Channel[T, A]) NewProvider(opts ...store.Option) *store.Provider[T, A] {
	opts = append([]store.Option{store.WithName(c.name)}, opts...)
	return store.New(c.initial.State, c.updaters, opts...)
}

// Provide returns a context whose consumers read src. A nil src hides any
// enclosing override.
func (c *Channel[T, A]) Provide(ctx context.Context, src Source[T, A]) context.Context {
	return context.WithValue(ctx, c.key, src)
}

// WithValue installs a fixed pair.
func (c *Channel[T, A]) WithValue(ctx context.Context, pair *store.Pair[T, A]) context.Context {
	if pair == nil {
		return c.Provide(ctx, nil)
	}
	return c.Provide(ctx, fixed[T, A]{pair: pair})
}

// Lookup returns the nearest override's current pair.
func (c *Channel[T, A]) Lookup(ctx context.Context) (*store.Pair[T, A], bool) {
	src, ok := ctx.Value(c.key).(Source[T, A])
	if !ok || src == nil {
		return nil, false
	}
	pair := src.Pair()
	if pair == nil {
		return nil, false
	}
	return pair, true
}

// From returns the nearest override's current pair, or the default.
func (c *Channel[T, A]) From(ctx context.Context) *store.Pair[T, A] {
	if pair, ok := c.Lookup(ctx); ok {
		return pair
	}
	return c.initial
}

// Operations returns the live operations visible from ctx. It fails with
// ErrNoProvider instead of handing out the empty default.
func (c *Channel[T, A]) Operations(ctx context.Context) (*A, error) {
	pair := c.From(ctx)
	if !pair.Live() {
		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventNoProvider,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    eventSource,
			Data:      map[string]any{"channel": c.name},
		})
		return nil, fmt.Errorf("channel %s: %w", c.name, ErrNoProvider)
	}
	return pair.Ops, nil
}

// MustOperations is Operations for wiring code that cannot continue
// without a provider. It panics with the ErrNoProvider error.
func (c *Channel[T, A]) MustOperations(ctx context.Context) *A {
	ops, err := c.Operations(ctx)
	if err != nil {
		panic(err)
	}
	return ops
}
