package channel

import "errors"

// ErrNoProvider is returned when operations are requested from a channel
// that has no live provider installed for the caller.
var ErrNoProvider = errors.New("no provider installed")
