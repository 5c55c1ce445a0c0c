package draft

import (
	"errors"
	"fmt"
)

// ErrClone wraps failures to copy a base value into a draft.
var ErrClone = errors.New("clone draft")

// PanicError is returned by Produce when the recipe panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recipe panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
