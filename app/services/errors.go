package services

import "errors"

// Programmer-contract violations. Data-level problems (malformed
// payloads, missing fields) never surface as errors; they degrade to
// null fields or sentinel keys.
var (
	// ErrReentrantCall GetOrCompute was invoked from within its own
	// callback chain
	ErrReentrantCall = errors.New("reentrant GetOrCompute call from callback chain")

	// ErrNilCallback a nil function was passed to RegisterCallback
	ErrNilCallback = errors.New("callback function must not be nil")

	// ErrInvalidLevel an unknown change-detection level was given
	ErrInvalidLevel = errors.New("unknown change-detection level")
)
