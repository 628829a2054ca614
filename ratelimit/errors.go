package ratelimit

import "errors"

var (
	// ErrLimited is returned when an actor's request budget is exhausted.
	ErrLimited = errors.New("ratelimit: actor request budget exhausted")
)
