package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSearchUnavailable signals that the search engine could not be reached.
	ErrSearchUnavailable = errors.New("search unavailable")
)

// KeyPrefix namespaces every key the service writes to the cache store.
const KeyPrefix = "bizsearch:"
