package reembed

import "errors"

// ErrInvalidMaxAttempts is returned when a retry is requested with a
// non-positive attempt count.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
