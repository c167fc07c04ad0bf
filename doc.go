// Package bookcafe is a lexical book search engine for the BookCafe catalog.
//
// A query is normalized, compiled into a single storage-level match plan
// (a prefix text clause plus tiered fuzzy conditions) and the matching book
// IDs are ranked best first: exact title or author matches before prefix
// matches, prefix before word-start matches, then by text rank and ID.
//
// The catalog lives in PostgreSQL, SQLite or an in-process bleve index.
// Ranked results can be cached in-process and in Redis.
//
//	client, _ := bookcafe.New(bookcafe.WithSQLite("books.db"))
//	defer client.Close()
//
//	_ = client.Put(ctx, bookcafe.Book{
//	    ID:      "1",
//	    Title:   "Animal Farm",
//	    Authors: []bookcafe.Author{{ID: "a1", Name: "George Orwell"}},
//	})
//	ids, _ := client.Search(ctx, "orwell", "author")
package bookcafe
