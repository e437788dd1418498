package heap

import "errors"

// ErrInvalidCapacity is returned by New when the requested capacity is not
// a positive integer.
var ErrInvalidCapacity = errors.New("heap: requested capacity must be positive")
