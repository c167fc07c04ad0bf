package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// Compile-time check: Store implements db.Catalog.
var _ db.Catalog = (*Store)(nil)

var errClosed = errors.New("store is closed")

// Store is a catalog backed by SQLite with an FTS5 search index.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Open opens (or creates) a catalog at path. An empty path or ":memory:"
// creates a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := registerFunctions(); err != nil {
		return nil, err
	}

	dsn := ":memory:"
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
		dsn = path
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single connection: keeps :memory: databases alive and serializes writers.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	s := &Store{db: conn, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	if _, err := s.db.ExecContext(ctx, indexSchema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Get loads a book with its authors and categories.
func (s *Store) Get(ctx context.Context, id string) (book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: errClosed}
	}

	var (
		title, isbn, desc string
		price             sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT title, isbn, description, price FROM books WHERE id = ?`, id,
	).Scan(&title, &isbn, &desc, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Book{}, db.ErrKeyNotFound
	}
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: err}
	}

	authors, err := s.loadAuthors(ctx, id)
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: err}
	}
	categories, err := s.loadCategories(ctx, id)
	if err != nil {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: err}
	}

	var p *float64
	if price.Valid {
		p = &price.Float64
	}
	return book.Reconstruct(id, title, isbn, desc, p, authors, categories), nil
}

func (s *Store) loadAuthors(ctx context.Context, bookID string) ([]book.Author, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = ? ORDER BY ba.position`, bookID)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	defer rows.Close()

	var out []book.Author
	for rows.Next() {
		var a book.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) loadCategories(ctx context.Context, bookID string) ([]book.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = ? ORDER BY c.name`, bookID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var out []book.Category
	for rows.Next() {
		var c book.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of stored books.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, &db.Error{Op: db.OpCount, Err: errClosed}
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Put upserts books with their author and category links, then refreshes
// their index rows when the index exists.
func (s *Store) Put(ctx context.Context, books ...book.Book) error {
	if len(books) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpPut, Err: errClosed}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpPut, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	indexed, err := indexExists(ctx, tx)
	if err != nil {
		return &db.Error{Op: db.OpPut, Err: err}
	}

	bookIDs := make([]string, 0, len(books))
	var authorIDs []string
	for _, b := range books {
		if err := putBook(ctx, tx, b); err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("%w: %w", db.ErrDuplicate, err)
			}
			return &db.Error{Op: db.OpPut, Err: fmt.Errorf("book %s: %w", b.ID(), err)}
		}
		bookIDs = append(bookIDs, b.ID())
		for _, a := range b.Authors() {
			authorIDs = append(authorIDs, a.ID)
		}
	}

	if indexed {
		// An upserted author may be shared: every book linked to it needs
		// a fresh row, not only the books written here.
		linked, err := booksByAuthors(ctx, tx, authorIDs)
		if err != nil {
			return &db.Error{Op: db.OpPut, Err: err}
		}
		if err := indexBooks(ctx, tx, append(bookIDs, linked...)); err != nil {
			return &db.Error{Op: db.OpPut, Err: fmt.Errorf("index books: %w", err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpPut, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func putBook(ctx context.Context, tx *sql.Tx, b book.Book) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO books (id, title, isbn, description, price) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, isbn = excluded.isbn,
			description = excluded.description, price = excluded.price`,
		b.ID(), b.Title(), b.ISBN(), b.Description(), b.Price())
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, b.ID()); err != nil {
		return fmt.Errorf("clear authors: %w", err)
	}
	for i, a := range b.Authors() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO authors (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name`, a.ID, a.Name); err != nil {
			return fmt.Errorf("upsert author %s: %w", a.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO book_authors (book_id, author_id, position) VALUES (?, ?, ?)`,
			b.ID(), a.ID, i); err != nil {
			return fmt.Errorf("link author %s: %w", a.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_categories WHERE book_id = ?`, b.ID()); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, c := range b.Categories() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name`, c.ID, c.Name); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO book_categories (book_id, category_id) VALUES (?, ?)`,
			b.ID(), c.ID); err != nil {
			return fmt.Errorf("link category %s: %w", c.ID, err)
		}
	}
	return nil
}

// rebuildSQL derives FTS rows from live titles, ISBNs and author names in
// position order. Callers append a WHERE clause over books b.
const rebuildSQL = `
	INSERT INTO book_search (book_id, title, isbn, authors)
	SELECT b.id, bookcafe_fold(b.title), bookcafe_fold_isbn(b.isbn),
		COALESCE((
			SELECT bookcafe_fold(group_concat(a.name, ' '))
			FROM (SELECT a.name FROM book_authors ba
				JOIN authors a ON a.id = ba.author_id
				WHERE ba.book_id = b.id ORDER BY ba.position) a
		), '')
	FROM books b`

// indexBooks replaces the FTS rows of the given books. FTS5 has no
// REPLACE, so rows are deleted first.
func indexBooks(ctx context.Context, tx *sql.Tx, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	in, args := inList(ids)
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_search WHERE book_id IN `+in, args...); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, rebuildSQL+` WHERE b.id IN `+in, args...); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	return nil
}

// booksByAuthors returns the IDs of books linked to any of the authors.
func booksByAuthors(ctx context.Context, tx *sql.Tx, authorIDs []string) ([]string, error) {
	authorIDs = dedupe(authorIDs)
	if len(authorIDs) == 0 {
		return nil, nil
	}
	in, args := inList(authorIDs)
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT book_id FROM book_authors WHERE author_id IN `+in, args...)
	if err != nil {
		return nil, fmt.Errorf("linked books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan linked book: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func inList(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(values)), ",") + ")", args
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func indexExists(ctx context.Context, tx *sql.Tx) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, indexTable,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	return n > 0, nil
}

// Delete removes books by ID. Links cascade; unknown IDs are ignored.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpDelete, Err: errClosed}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	indexed, err := indexExists(ctx, tx)
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
			return &db.Error{Op: db.OpDelete, Err: fmt.Errorf("book %s: %w", id, err)}
		}
		if indexed {
			if _, err := tx.ExecContext(ctx, `DELETE FROM book_search WHERE book_id = ?`, id); err != nil {
				return &db.Error{Op: db.OpDelete, Err: fmt.Errorf("index row %s: %w", id, err)}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpDelete, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// DropIndex removes the FTS table. Searches degrade to live fields until Reindex.
func (s *Store) DropIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS book_search`); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Reindex recreates the FTS table if needed and rebuilds every row from
// live titles, ISBNs and author names.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, &db.Error{Op: db.OpReindex, Err: errClosed}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, indexSchema); err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("create index: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_search`); err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("clear index: %w", err)}
	}

	_, err = tx.ExecContext(ctx, rebuildSQL)
	if err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("rebuild index: %w", err)}
	}
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM book_search`).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("count index: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("commit: %w", err)}
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
