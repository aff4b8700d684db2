package physics

import "errors"

// ErrInvalidHandle is returned when a body handle is stale or foreign.
var ErrInvalidHandle = errors.New("invalid body handle")
