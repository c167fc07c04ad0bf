package postgres

import "strings"

// foldSQL mirrors query.Fold inline so fuzzy predicates work without any
// server-side function or index: strip punctuation, collapse spaces, lower.
func foldSQL(expr string) string {
	return "lower(btrim(regexp_replace(regexp_replace(coalesce(" + expr +
		", ''), '[^[:alnum:][:space:]]', '', 'g'), '[[:space:]]+', ' ', 'g')))"
}

// foldISBNSQL mirrors query.FoldISBN.
func foldISBNSQL(expr string) string {
	return "replace(" + foldSQL(expr) + ", ' ', '')"
}

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	isbn        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	price       DOUBLE PRECISION,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_unique ON books (isbn) WHERE isbn <> '';

CREATE TABLE IF NOT EXISTS authors (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id   TEXT NOT NULL REFERENCES books (id) ON DELETE CASCADE,
	author_id TEXT NOT NULL REFERENCES authors (id) ON DELETE CASCADE,
	position  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (book_id, author_id)
);

CREATE TABLE IF NOT EXISTS categories (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS book_categories (
	book_id     TEXT NOT NULL REFERENCES books (id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
	PRIMARY KEY (book_id, category_id)
);
`

// vectorSQL builds the weighted search vector of the book aliased as b:
// title (A), ISBN (B), author names in position order (C).
var vectorSQL = strings.Join([]string{
	"setweight(to_tsvector('simple', " + foldSQL("b.title") + "), 'A')",
	"setweight(to_tsvector('simple', " + foldISBNSQL("b.isbn") + "), 'B')",
	"setweight(to_tsvector('simple', " + foldSQL(`(
		SELECT string_agg(a.name, ' ' ORDER BY ba.position)
		FROM book_authors ba JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = b.id)`) + "), 'C')",
}, " || ")

// refreshVectorsSQL rebuilds the vectors of books $1 and of every book
// linked to an author in $2.
var refreshVectorsSQL = `UPDATE books b SET search_vector = ` + vectorSQL + `
	WHERE b.id = ANY($1::text[])
		OR b.id IN (SELECT ba.book_id FROM book_authors ba WHERE ba.author_id = ANY($2::text[]))`

// indexSchema adds the search_vector column, its GIN index and a trigger
// refreshing title and ISBN weights on write. Author weights are refreshed
// by Put and Reindex.
var indexSchema = `
ALTER TABLE books ADD COLUMN IF NOT EXISTS search_vector tsvector;
CREATE INDEX IF NOT EXISTS books_search_vector_idx ON books USING GIN (search_vector);

CREATE OR REPLACE FUNCTION books_search_vector_update() RETURNS trigger AS $$
BEGIN
	NEW.search_vector :=
		setweight(to_tsvector('simple', ` + foldSQL("NEW.title") + `), 'A') ||
		setweight(to_tsvector('simple', ` + foldISBNSQL("NEW.isbn") + `), 'B');
	RETURN NEW;
END
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS books_search_vector_trigger ON books;
CREATE TRIGGER books_search_vector_trigger
	BEFORE INSERT OR UPDATE OF title, isbn ON books
	FOR EACH ROW EXECUTE FUNCTION books_search_vector_update();
`

const dropIndexSchema = `
DROP TRIGGER IF EXISTS books_search_vector_trigger ON books;
DROP FUNCTION IF EXISTS books_search_vector_update();
DROP INDEX IF EXISTS books_search_vector_idx;
ALTER TABLE books DROP COLUMN IF EXISTS search_vector;
`
