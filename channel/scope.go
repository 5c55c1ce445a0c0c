package channel

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/tailored-agentic-units/draftstate/observability"
	"github.com/tailored-agentic-units/draftstate/store"
)

// Scopes maps component paths such as "/app/sidebar" to sources. Resolve
// walks up to the nearest enclosing path that has a source, so a provider
// at "/app" serves "/app/sidebar/list" unless something closer overrides
// it. Reads work on an immutable tree snapshot and never block writers.
type Scopes[T, A any] struct {
	ch   *Channel[T, A]
	mu   sync.Mutex
	tree atomic.Pointer[iradix.Tree[Source[T, A]]]
}

// NewScopes creates an empty scope tree whose fallback is the channel's
// default pair.
func NewScopes[T, A any](ch *Channel[T, A]) *Scopes[T, A] {
	s := &Scopes[T, A]{ch: ch}
	s.tree.Store(iradix.New[Source[T, A]]())
	return s
}

// scopeKey cleans p and terminates it with a slash so prefix matches only
// happen on whole segments: "/app/" is a prefix of "/app/list/" but not of
// "/application/".
func scopeKey(p string) []byte {
	p = path.Clean("/" + p)
	if p != "/" {
		p += "/"
	}
	return []byte(p)
}

func scopePath(k []byte) string {
	p := string(k)
	if p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/")
}

// Provide installs src at p, replacing any previous source at that path.
func (s *Scopes[T, A]) Provide(p string, src Source[T, A]) {
	key := scopeKey(p)

	s.mu.Lock()
	tree, _, _ := s.tree.Load().Insert(key, src)
	s.tree.Store(tree)
	s.mu.Unlock()

	s.emit(EventScopeProvide, scopePath(key))
}

// Remove deletes the source installed exactly at p.
func (s *Scopes[T, A]) Remove(p string) bool {
	key := scopeKey(p)

	s.mu.Lock()
	tree, _, removed := s.tree.Load().Delete(key)
	if removed {
		s.tree.Store(tree)
	}
	s.mu.Unlock()

	if removed {
		s.emit(EventScopeRemove, scopePath(key))
	}
	return removed
}

// Lookup returns the pair from the nearest enclosing source and the path
// it was installed at.
func (s *Scopes[T, A]) Lookup(p string) (*store.Pair[T, A], string, bool) {
	k, src, ok := s.tree.Load().Root().LongestPrefix(scopeKey(p))
	if !ok || src == nil {
		return nil, "", false
	}
	pair := src.Pair()
	if pair == nil {
		return nil, "", false
	}
	return pair, scopePath(k), true
}

// Resolve returns the nearest enclosing pair, or the channel default.
func (s *Scopes[T, A]) Resolve(p string) *store.Pair[T, A] {
	if pair, _, ok := s.Lookup(p); ok {
		return pair
	}
	return s.ch.Default()
}

// Operations returns the live operations visible at p.
func (s *Scopes[T, A]) Operations(p string) (*A, error) {
	pair := s.Resolve(p)
	if !pair.Live() {
		return nil, fmt.Errorf("channel %s at %s: %w", s.ch.Name(), scopePath(scopeKey(p)), ErrNoProvider)
	}
	return pair.Ops, nil
}

// Paths lists the paths that have a source, in lexical order.
func (s *Scopes[T, A]) Paths() []string {
	var paths []string
	s.tree.Load().Root().Walk(func(k []byte, _ Source[T, A]) bool {
		paths = append(paths, scopePath(k))
		return false
	})
	return paths
}

// Bind returns a context whose channel consumers resolve p through the
// scope tree at read time.
func (s *Scopes[T, A]) Bind(ctx context.Context, p string) context.Context {
	return s.ch.Provide(ctx, scoped[T, A]{scopes: s, path: p})
}

type scoped[T, A any] struct {
	scopes *Scopes[T, A]
	path   string
}

func (sc scoped[T, A]) Pair() *store.Pair[T, A] {
	pair, _, _ := sc.scopes.Lookup(sc.path)
	return pair
}

func (s *Scopes[T, A]) emit(t observability.EventType, p string) {
	s.ch.observer.OnEvent(context.Background(), observability.Event{
		Type:      t,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    eventSource,
		Data: map[string]any{
			"channel": s.ch.Name(),
			"path":    p,
		},
	})
}
