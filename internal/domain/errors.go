package domain

import "errors"

var (
	// ErrNotFound signals a missing book.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate book, e.g. a reused ISBN.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidBook signals a book that fails validation.
	ErrInvalidBook = errors.New("invalid book")
	// ErrIndexUnavailable signals that the prefix search index is missing.
	// Search degrades to live-field matching instead of failing.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrUnsupportedField signals a predicate on a field that is not searchable.
	ErrUnsupportedField = errors.New("unsupported search field")
	// ErrStorage signals a storage backend failure.
	ErrStorage = errors.New("storage error")
)
