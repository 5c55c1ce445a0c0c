package draft

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mitchellh/copystructure"
)

// DeepCopier is implemented by types that know how to copy themselves,
// including any unexported state copystructure cannot reach.
type DeepCopier[T any] interface {
	DeepCopy() T
}

// Clone returns an independent deep copy of v.
//
// Without a DeepCopy method the copy is reflective and only reaches exported
// fields. A copy that does not compare equal to v, unexported fields
// included, is reported as ErrClone rather than returned with state missing.
func Clone[T any](v T) (T, error) {
	if isNil(v) {
		return v, nil
	}
	if c, ok := any(v).(DeepCopier[T]); ok {
		return c.DeepCopy(), nil
	}

	var zero T
	copied, err := copystructure.Copy(v)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrClone, err)
	}
	if copied == nil {
		return zero, nil
	}
	out, ok := copied.(T)
	if !ok {
		return zero, fmt.Errorf("%w: copy of %T has type %T", ErrClone, v, copied)
	}
	if !sameClone(v, out) {
		return zero, fmt.Errorf("%w: copy of %T lost unexported state; implement DeepCopy", ErrClone, v)
	}
	return out, nil
}

func sameClone[T any](a, b T) bool {
	return cmp.Equal(a, b,
		cmp.Exporter(func(reflect.Type) bool { return true }),
		cmpopts.EquateNaNs(),
	)
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
