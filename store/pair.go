package store

// Pair bundles a state snapshot with the operations that target the same
// provider. A Pair with nil Ops is a placeholder that no provider has
// populated yet.
type Pair[T, A any] struct {
	State T
	Ops   *A

	version uint64
}

// Live reports whether the pair carries operations from a provider.
func (p *Pair[T, A]) Live() bool {
	return p != nil && p.Ops != nil
}

// Version is the provider state version the pair was built from. Zero for
// placeholder pairs and for a provider that has not changed yet.
func (p *Pair[T, A]) Version() uint64 {
	return p.version
}
