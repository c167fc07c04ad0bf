package sqlite

// schema mirrors the catalog tables. The FTS5 search index lives in
// indexSchema so it can be dropped and rebuilt on its own.
const schema = `
CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	isbn        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	price       REAL
);
CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_unique ON books(isbn) WHERE isbn <> '';

CREATE TABLE IF NOT EXISTS authors (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id   TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	author_id TEXT NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (book_id, author_id)
);

CREATE TABLE IF NOT EXISTS categories (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS book_categories (
	book_id     TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (book_id, category_id)
);
`

// indexSchema creates the search index. Reindex runs it again after a drop.
// Diacritics are kept so accents compare the same way as in query.Fold.
const indexSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS book_search USING fts5(
	book_id UNINDEXED,
	title,
	isbn,
	authors,
	tokenize='unicode61 remove_diacritics 0'
);
`

const indexTable = "book_search"
