// Package store holds reactive state behind a fixed set of named operations.
//
// A Provider owns one state cell. Its operations value is an application
// struct whose fields are functions; each field is built from an update
// function that receives a draft of the state:
//
//	type Counter struct{ Count int }
//
//	type CounterOps struct {
//	    Increment func(by int)
//	    Reset     func()
//	}
//
//	func counterOps(b *store.Binder[Counter]) CounterOps {
//	    return CounterOps{
//	        Increment: store.Op1(b, "increment", func(d *Counter, by int) error {
//	            d.Count += by
//	            return nil
//	        }),
//	        Reset: store.Op(b, "reset", func(d *Counter) error {
//	            *d = Counter{}
//	            return nil
//	        }),
//	    }
//	}
//
//	p := store.New(Counter{}, counterOps)
//	state, ops, pair := p.Use()
//	ops.Increment(5)
//
// Calling an operation applies it synchronously. If the update function
// returns an error or panics, the draft is thrown away, the error goes to
// the provider's ErrorHandler and to its observer, and the caller sees
// nothing: operations never return errors and never panic.
//
// Ops returns the same pointer until SetUpdaters or SetErrorHandler is
// called, and Pair returns the same pointer until the state version or the
// operations pointer changes, so consumers can compare them by identity.
package store
