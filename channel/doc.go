// Package channel distributes provider pairs to code that should not know
// where the state lives.
//
// A Channel is created once, usually at package scope, with the initial
// state and the updaters that define its operations value:
//
//	var Counter, defaultCounter = channel.New(counter{}, counterOps)
//
// Its default pair holds the initial state and no operations. A live
// provider is installed on a context.Context, and everything below that
// context reads the provider's current pair:
//
//	p := Counter.NewProvider()
//	ctx = Counter.Provide(ctx, p)
//	...
//	ops, err := Counter.Operations(ctx) // ErrNoProvider if nothing was installed
//
// The nearest enclosing override wins. Scopes offers the same lookup over
// slash-separated component paths for trees that are not threaded through a
// context.
package channel
