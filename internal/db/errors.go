package db

import (
	"errors"
	"strconv"
)

// Sentinel errors for backend operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants name backend operations for error context.
const (
	OpQuery     = "solr.query"
	OpPing      = "solr.ping"
	OpGet       = "cache.get"
	OpSet       = "cache.set"
	OpCachePing = "cache.ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// QueryError is a failure reported by the search engine itself,
// e.g. a query the engine's parser rejected.
type QueryError struct {
	Code int
	Msg  string
}

func (e *QueryError) Error() string {
	return "solr error " + strconv.Itoa(e.Code) + ": " + e.Msg
}

// AsQueryError returns the engine failure carried by err, if any.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
