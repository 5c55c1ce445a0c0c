package draft

import (
	"reflect"
	"runtime/debug"

	"github.com/google/go-cmp/cmp"
)

// Recipe mutates a draft in place. Assigning *d replaces the value outright.
type Recipe[T any] func(d *T) error

type options[T any] struct {
	equal func(a, b T) bool
}

// Option configures Produce.
type Option[T any] func(*options[T])

// WithEqual replaces the default go-cmp comparison used to detect unchanged
// drafts.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(o *options[T]) { o.equal = equal }
}

// WithoutEqual reports every successful recipe as a change.
func WithoutEqual[T any]() Option[T] {
	return func(o *options[T]) { o.equal = nil }
}

// Equal compares two values deeply, unexported fields included.
func Equal[T any](a, b T) bool {
	return cmp.Equal(a, b, cmp.Exporter(func(reflect.Type) bool { return true }))
}

// Produce applies recipe to a draft copy of base.
//
// It returns (base, false, err) when cloning fails or the recipe returns an
// error or panics, (base, false, nil) when the draft ends up equal to base,
// and (draft, true, nil) otherwise.
func Produce[T any](base T, recipe Recipe[T], opts ...Option[T]) (T, bool, error) {
	o := options[T]{equal: Equal[T]}
	for _, opt := range opts {
		opt(&o)
	}

	d, err := Clone(base)
	if err != nil {
		return base, false, err
	}

	if err := run(recipe, &d); err != nil {
		return base, false, err
	}

	if o.equal != nil && o.equal(base, d) {
		return base, false, nil
	}
	return d, true, nil
}

func run[T any](recipe Recipe[T], d *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return recipe(d)
}
