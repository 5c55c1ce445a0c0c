package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	events "github.com/docker/go-events"
	"github.com/google/uuid"

	"github.com/tailored-agentic-units/draftstate/draft"
	"github.com/tailored-agentic-units/draftstate/observability"
)

// Provider is a live state cell with its operations. All methods are safe
// for concurrent use; operations from one provider are applied one at a
// time in the order their calls acquire the provider.
type Provider[T, A any] struct {
	id       string
	name     string
	observer observability.Observer
	produce  []draft.Option[T]

	init     func() T
	initOnce sync.Once

	mu       sync.Mutex
	state    T
	version  uint64
	updaters Updaters[T, A]
	onError  ErrorHandler
	opsGen   uint64
	ops      *A
	names    []string
	pair     *Pair[T, A]
	closed   bool

	broadcast *events.Broadcaster
	watchers  map[*watcher]struct{}
}

// New creates a provider seeded with initial.
func New[T, A any](initial T, updaters Updaters[T, A], opts ...Option) *Provider[T, A] {
	p := newProvider(updaters, opts...)
	p.state = initial
	p.created()
	return p
}

// NewFunc creates a provider whose initial state is computed by init on
// first use. init runs exactly once for the provider's lifetime. If init
// panics, the panic is logged as EventInitPanic and the provider starts from
// the zero value of T.
func NewFunc[T, A any](init func() T, updaters Updaters[T, A], opts ...Option) *Provider[T, A] {
	p := newProvider(updaters, opts...)
	p.init = init
	p.created()
	return p
}

func newProvider[T, A any](updaters Updaters[T, A], opts ...Option) *Provider[T, A] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}
	if o.observer == nil {
		o.observer = observability.NewSlogObserver(slog.Default())
	}

	p := &Provider[T, A]{
		id:        o.id,
		name:      o.name,
		observer:  o.observer,
		updaters:  updaters,
		onError:   o.onError,
		broadcast: events.NewBroadcaster(),
		watchers:  make(map[*watcher]struct{}),
	}
	if o.alwaysCommit {
		p.produce = append(p.produce, draft.WithoutEqual[T]())
	}
	return p
}

func (p *Provider[T, A]) created() {
	p.emit(EventProviderCreate, observability.LevelVerbose, map[string]any{
		"lazy": p.init != nil,
	})
}

// ID returns the provider's unique identifier.
func (p *Provider[T, A]) ID() string { return p.id }

// Name returns the provider's label, possibly empty.
func (p *Provider[T, A]) Name() string { return p.name }

func (p *Provider[T, A]) ensureInit() {
	p.initOnce.Do(func() {
		if p.init == nil {
			return
		}
		s, err := p.runInit()
		p.mu.Lock()
		p.state = s
		p.init = nil
		p.mu.Unlock()
		if err != nil {
			p.emit(EventInitPanic, observability.LevelError, map[string]any{
				"error": err.Error(),
			})
		}
	})
}

func (p *Provider[T, A]) runInit() (s T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			s = zero
			err = fmt.Errorf("init panicked: %v", r)
		}
	}()
	return p.init(), nil
}

// State returns the current state. The value is shared with the provider
// and must be treated as read-only; use Snapshot for a private copy.
func (p *Provider[T, A]) State() T {
	p.ensureInit()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Snapshot returns a deep copy of the current state.
func (p *Provider[T, A]) Snapshot() (T, error) {
	return draft.Clone(p.State())
}

// Version counts committed changes. It starts at zero and only grows.
func (p *Provider[T, A]) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// Operations lists the names bound by the current updaters. It is empty
// until Ops has been built at least once.
func (p *Provider[T, A]) Operations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.names...)
}

// Ops returns the operations value. The pointer is stable until
// SetUpdaters or SetErrorHandler replaces an input.
func (p *Provider[T, A]) Ops() *A {
	p.ensureInit()

	p.mu.Lock()
	if p.ops != nil {
		ops := p.ops
		p.mu.Unlock()
		return ops
	}
	gen, updaters, handler := p.opsGen, p.updaters, p.onError
	p.mu.Unlock()

	b := &Binder[T]{
		apply: func(name string, recipe draft.Recipe[T]) {
			p.apply(name, handler, recipe)
		},
	}
	var ops A
	if updaters != nil {
		ops = updaters(b)
	}

	p.mu.Lock()
	if p.opsGen != gen {
		p.mu.Unlock()
		return p.Ops()
	}
	if p.ops != nil {
		existing := p.ops
		p.mu.Unlock()
		return existing
	}
	p.ops = &ops
	p.names = b.names
	p.mu.Unlock()

	p.emit(EventOpsBuild, observability.LevelVerbose, map[string]any{
		"operations": b.Names(),
		"generation": gen,
	})
	return &ops
}

// Pair returns the [state, operations] pair. The pointer is stable until
// the state version or the operations pointer changes.
func (p *Provider[T, A]) Pair() *Pair[T, A] {
	ops := p.Ops()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pair != nil && p.pair.Ops == ops && p.pair.version == p.version {
		return p.pair
	}
	p.pair = &Pair[T, A]{State: p.state, Ops: ops, version: p.version}
	return p.pair
}

// Use returns the state, the operations and their pair in one call.
func (p *Provider[T, A]) Use() (T, *A, *Pair[T, A]) {
	pair := p.Pair()
	return pair.State, pair.Ops, pair
}

// SetUpdaters replaces the update functions. The next Ops call builds a
// new operations value; values handed out earlier keep working against
// this provider with the functions they were built from.
func (p *Provider[T, A]) SetUpdaters(updaters Updaters[T, A]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updaters = updaters
	p.invalidateOps()
}

// SetErrorHandler replaces the error handler, which invalidates Ops the
// same way SetUpdaters does. A nil handler leaves only the observer record.
func (p *Provider[T, A]) SetErrorHandler(h ErrorHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = h
	p.invalidateOps()
}

func (p *Provider[T, A]) invalidateOps() {
	p.opsGen++
	p.ops = nil
}

func (p *Provider[T, A]) apply(name string, onError ErrorHandler, recipe draft.Recipe[T]) {
	p.ensureInit()

	p.mu.Lock()
	next, changed, err := draft.Produce(p.state, recipe, p.produce...)
	if err == nil && changed {
		p.state = next
		p.version++
		if !p.closed {
			_ = p.broadcast.Write(Change[T]{
				Provider:  p.id,
				Operation: name,
				Version:   p.version,
				State:     next,
			})
		}
	}
	version := p.version
	p.mu.Unlock()

	switch {
	case err != nil:
		p.fail(name, version, onError, err)
	case !changed:
		p.emit(EventOperationNoop, observability.LevelVerbose, map[string]any{
			"operation": name,
			"version":   version,
		})
	default:
		p.emit(EventOperationApply, observability.LevelVerbose, map[string]any{
			"operation": name,
			"version":   version,
		})
	}
}

func (p *Provider[T, A]) fail(name string, version uint64, onError ErrorHandler, err error) {
	if onError != nil {
		p.callHandler(name, onError, err)
	}
	p.emit(EventOperationError, observability.LevelError, map[string]any{
		"operation": name,
		"version":   version,
		"error":     err.Error(),
	})
}

func (p *Provider[T, A]) callHandler(name string, onError ErrorHandler, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.emit(EventHandlerPanic, observability.LevelError, map[string]any{
				"operation": name,
				"panic":     fmt.Sprint(r),
			})
		}
	}()
	onError(err)
}

// Close stops change notifications and closes every watcher. Operations
// keep working after Close.
func (p *Provider[T, A]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	watchers := make([]*watcher, 0, len(p.watchers))
	for w := range p.watchers {
		watchers = append(watchers, w)
	}
	p.mu.Unlock()

	for _, w := range watchers {
		w.cancel()
	}
	err := p.broadcast.Close()

	p.emit(EventProviderClose, observability.LevelVerbose, map[string]any{
		"watchers": len(watchers),
	})
	return err
}

func (p *Provider[T, A]) emit(t observability.EventType, level observability.Level, data map[string]any) {
	data["provider_id"] = p.id
	if p.name != "" {
		data["provider"] = p.name
	}
	p.observer.OnEvent(context.Background(), observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    eventSource,
		Data:      data,
	})
}
