package store

import "github.com/tailored-agentic-units/draftstate/draft"

// Updaters builds an operations value of type A. It is called once per
// operations rebuild and must only construct functions with Op, Op1, Op2,
// Op3 and OpN; it must not call into the provider.
type Updaters[T, A any] func(b *Binder[T]) A

// Binder turns update functions into caller-facing operations bound to one
// provider and one error handler.
type Binder[T any] struct {
	apply func(name string, recipe draft.Recipe[T])
	names []string
}

func (b *Binder[T]) bind(name string) {
	b.names = append(b.names, name)
}

// Names lists the operations bound so far, in binding order.
func (b *Binder[T]) Names() []string {
	return append([]string(nil), b.names...)
}

// Op binds an update function without arguments.
func Op[T any](b *Binder[T], name string, fn func(d *T) error) func() {
	b.bind(name)
	return func() {
		b.apply(name, fn)
	}
}

// Op1 binds an update function taking one argument.
func Op1[T, P any](b *Binder[T], name string, fn func(d *T, p P) error) func(P) {
	b.bind(name)
	return func(p P) {
		b.apply(name, func(d *T) error { return fn(d, p) })
	}
}

// Op2 binds an update function taking two arguments.
func Op2[T, P1, P2 any](b *Binder[T], name string, fn func(d *T, p1 P1, p2 P2) error) func(P1, P2) {
	b.bind(name)
	return func(p1 P1, p2 P2) {
		b.apply(name, func(d *T) error { return fn(d, p1, p2) })
	}
}

// Op3 binds an update function taking three arguments.
func Op3[T, P1, P2, P3 any](b *Binder[T], name string, fn func(d *T, p1 P1, p2 P2, p3 P3) error) func(P1, P2, P3) {
	b.bind(name)
	return func(p1 P1, p2 P2, p3 P3) {
		b.apply(name, func(d *T) error { return fn(d, p1, p2, p3) })
	}
}

// OpN binds a variadic update function.
func OpN[T, P any](b *Binder[T], name string, fn func(d *T, ps ...P) error) func(...P) {
	b.bind(name)
	return func(ps ...P) {
		args := append([]P(nil), ps...)
		b.apply(name, func(d *T) error { return fn(d, args...) })
	}
}
