package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/mode"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length in bytes.
	MaxQueryLength = 4096
	// DefaultMinLength disables the short-query gate.
	DefaultMinLength = 1
	MaxLimit         = 1000
)

// Request is a normalized search query.
type Request struct {
	raw        string
	tokens     []string
	searchMode mode.Mode
	limit      int
	tooShort   bool
}

// New normalizes the query and resolves the mode.
// Unknown modes fall back to mode.All. A query whose normalized form is
// shorter than minLength runes is kept but reports Empty, so callers return
// no results instead of an error. limit 0 means unlimited.
func New(raw string, m mode.Mode, minLength, limit int) (Request, error) {
	if len(raw) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d bytes)", MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("limit must not be negative")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if !m.IsValid() {
		m = mode.All
	}
	if minLength < DefaultMinLength {
		minLength = DefaultMinLength
	}

	tokens := query.Normalize(raw)
	normalized := strings.Join(tokens, " ")

	return Request{
		raw:        raw,
		tokens:     tokens,
		searchMode: m,
		limit:      limit,
		tooShort:   utf8.RuneCountInString(normalized) < minLength,
	}, nil
}

// Raw returns the query as the caller sent it.
func (r *Request) Raw() string { return r.raw }

// Tokens returns the normalized terms (case preserved).
func (r *Request) Tokens() []string { return r.tokens }

// Normalized returns the terms joined by single spaces.
func (r *Request) Normalized() string { return strings.Join(r.tokens, " ") }

// Mode returns the field strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum number of IDs to return (0 = all).
func (r *Request) Limit() int { return r.limit }

// Empty reports whether the request must produce no results without
// touching storage: nothing survived normalization, or the query is below
// the minimum length.
func (r *Request) Empty() bool { return len(r.tokens) == 0 || r.tooShort }

// WithoutLimit returns a copy of the request that asks for every match.
func (r *Request) WithoutLimit() *Request {
	c := *r
	c.limit = 0
	return &c
}
