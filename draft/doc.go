// Package draft turns in-place mutation into immutable updates.
//
// Produce clones the base value into a draft, hands a pointer to the draft
// to a recipe, and either returns the draft as the next value or discards
// it. The base is never touched, so a recipe that fails halfway leaves no
// trace:
//
//	next, changed, err := draft.Produce(base, func(d *Counter) error {
//	    d.Count += 5
//	    return nil
//	})
//
// Cloning uses DeepCopy when the type provides one and falls back to a
// reflective deep copy of exported fields (github.com/mitchellh/copystructure).
// Change detection compares the draft with the base using go-cmp; when they
// are equal Produce returns the base itself and reports no change.
package draft
