package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexUnavailable signals a missing or unusable precomputed search index.
	ErrIndexUnavailable = errors.New("db: search index unavailable")
	// ErrUnsupportedField signals a condition on a field the adapter cannot compare.
	ErrUnsupportedField = errors.New("db: unsupported field")
	// ErrDuplicate signals a unique constraint violation (a reused ISBN).
	ErrDuplicate = errors.New("db: duplicate")
)

// Op constants name the failing operation for error context.
// Redis ops use command names; catalog ops are adapter verbs.
const (
	OpDel     = "DEL"
	OpScan    = "SCAN"
	OpGet     = "GET"
	OpSet     = "SET"
	OpMatch   = "MATCH"
	OpGetBook = "GET_BOOK"
	OpCount   = "COUNT"
	OpPut     = "PUT"
	OpDelete  = "DELETE"
	OpReindex = "REINDEX"
	OpMigrate = "MIGRATE"
	OpConnect = "CONNECT"
	OpPing    = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
