package db

import (
	"context"
	"fmt"
	"time"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
)

// Catalog is the book storage facade combining all sub-interfaces.
// Implemented by db/postgres, db/sqlite and db/memory.
type Catalog interface {
	Pinger
	Matcher
	BookReader
	BookWriter
	Close() error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MatchRow is one book satisfying a search plan.
// Tier is the best fuzzy priority that matched, or TextOnlyTier when only
// the text clause matched. Score is the engine rank of the text clause and
// is meaningful only when Scored is set.
type MatchRow struct {
	ID     string
	Tier   int
	Score  float64
	Scored bool
}

// TextOnlyTier marks rows found by the text clause alone.
const TextOnlyTier = query.PriorityTextSearch

// Matcher evaluates a search plan in one round-trip.
// Returns ErrIndexUnavailable when the plan targets a precomputed index
// the engine does not have; the same plan without the index must still work.
type Matcher interface {
	Match(ctx context.Context, plan *predicate.Plan) ([]MatchRow, error)
}

// BookReader loads catalog records.
type BookReader interface {
	Get(ctx context.Context, id string) (book.Book, error)
	Count(ctx context.Context) (int, error)
}

// BookWriter mutates the catalog. Put and Delete keep the search index in sync;
// Reindex rebuilds it from scratch and returns the number of indexed books.
type BookWriter interface {
	Put(ctx context.Context, books ...book.Book) error
	Delete(ctx context.Context, ids ...string) error
	Reindex(ctx context.Context) (int, error)
}

// KVStore provides the key-value operations used by the result cache.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Close()
}

// WaitForReady polls Ping until p responds or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
