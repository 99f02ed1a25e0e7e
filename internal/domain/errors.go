package domain

import "errors"

var (
	// ErrStoreUnavailable is returned when the hosted table store could not
	// be reached or rejected the request (auth, rate limit, bad formula).
	// It is deliberately distinct from an empty lookup result: a scan the
	// store never checked must not look like one it confirmed absent.
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrRecordNotFound is returned when a record referenced by ID does not
	// exist in the store.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnknownCategory is returned when no gateway is configured for the
	// requested product category.
	ErrUnknownCategory = errors.New("unknown product category")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
