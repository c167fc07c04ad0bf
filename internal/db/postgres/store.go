package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// Compile-time check: Store implements db.Catalog.
var _ db.Catalog = (*Store)(nil)

// SQLSTATE codes the adapter reacts to.
const (
	codeUndefinedColumn = "42703"
	codeUniqueViolation = "23505"
)

// Config holds connection parameters for a Postgres catalog.
type Config struct {
	DSN      string
	MaxConns int32
}

// Store is a catalog backed by PostgreSQL full-text search.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a connection pool. Call Migrate to create the schema.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates catalog tables and the search index.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	if _, err := s.pool.Exec(ctx, indexSchema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("search index: %w", err)}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Get loads a book with its authors and categories.
func (s *Store) Get(ctx context.Context, id string) (book.Book, error) {
	var (
		title, isbn, desc string
		price             *float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT title, isbn, description, price FROM books WHERE id = $1`, id,
	).Scan(&title, &isbn, &desc, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return book.Book{}, db.ErrKeyNotFound
	}
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: err}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.name FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = $1 ORDER BY ba.position`, id)
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: err}
	}
	authors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (book.Author, error) {
		var a book.Author
		err := row.Scan(&a.ID, &a.Name)
		return a, err
	})
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: fmt.Errorf("authors: %w", err)}
	}

	rows, err = s.pool.Query(ctx, `
		SELECT c.id, c.name FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = $1 ORDER BY c.name`, id)
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: err}
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (book.Category, error) {
		var c book.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: fmt.Errorf("categories: %w", err)}
	}

	return book.Reconstruct(id, title, isbn, desc, price, authors, categories), nil
}

// Count returns the number of stored books.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Put upserts books and their links in one transaction, then refreshes
// the search vectors so author names are indexed too.
func (s *Store) Put(ctx context.Context, books ...book.Book) error {
	if len(books) == 0 {
		return nil
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		indexed, err := hasSearchVector(ctx, tx)
		if err != nil {
			return err
		}
		bookIDs := make([]string, 0, len(books))
		var authorIDs []string
		for _, b := range books {
			if err := putBook(ctx, tx, b); err != nil {
				if IsDuplicate(err) {
					err = fmt.Errorf("%w: %w", db.ErrDuplicate, err)
				}
				return fmt.Errorf("book %s: %w", b.ID(), err)
			}
			bookIDs = append(bookIDs, b.ID())
			for _, a := range b.Authors() {
				authorIDs = append(authorIDs, a.ID)
			}
		}
		if !indexed {
			return nil
		}
		// Upserted authors may be shared, so books linked to them are
		// refreshed along with the books written here.
		if _, err := tx.Exec(ctx, refreshVectorsSQL, bookIDs, authorIDs); err != nil {
			return fmt.Errorf("index books: %w", err)
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpPut, Err: err}
	}
	return nil
}

func putBook(ctx context.Context, tx pgx.Tx, b book.Book) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO books (id, title, isbn, description, price) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, isbn = EXCLUDED.isbn,
			description = EXCLUDED.description, price = EXCLUDED.price,
			updated_at = now()`,
		b.ID(), b.Title(), b.ISBN(), b.Description(), b.Price())
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM book_authors WHERE book_id = $1`, b.ID()); err != nil {
		return fmt.Errorf("clear authors: %w", err)
	}
	for i, a := range b.Authors() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO authors (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, a.ID, a.Name); err != nil {
			return fmt.Errorf("upsert author %s: %w", a.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_authors (book_id, author_id, position) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, b.ID(), a.ID, i); err != nil {
			return fmt.Errorf("link author %s: %w", a.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM book_categories WHERE book_id = $1`, b.ID()); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, c := range b.Categories() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO categories (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, c.ID, c.Name); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_categories (book_id, category_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, b.ID(), c.ID); err != nil {
			return fmt.Errorf("link category %s: %w", c.ID, err)
		}
	}
	return nil
}

func hasSearchVector(ctx context.Context, tx pgx.Tx) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = 'books'
				AND column_name = 'search_vector')`).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check search vector: %w", err)
	}
	return ok, nil
}

// Delete removes books by ID; links cascade.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM books WHERE id = ANY($1)`, ids); err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

// DropIndex removes the search_vector column with its index and trigger.
func (s *Store) DropIndex(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, dropIndexSchema); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Reindex recreates the search index if needed and rebuilds every vector
// from titles, ISBNs and author names.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	if _, err := s.pool.Exec(ctx, indexSchema); err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("create index: %w", err)}
	}
	tag, err := s.pool.Exec(ctx, `UPDATE books b SET search_vector = `+vectorSQL)
	if err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: err}
	}
	return int(tag.RowsAffected()), nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicate reports whether err is a unique violation (duplicate ISBN).
func IsDuplicate(err error) bool {
	return pgCode(err) == codeUniqueViolation
}
