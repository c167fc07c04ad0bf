package book

import (
	"fmt"
	"regexp"
	"strings"
)

var isbnRegex = regexp.MustCompile(`^[0-9]([0-9-]*[0-9Xx])?$`)

// MaxTitleLength is the maximum title length in bytes.
const MaxTitleLength = 1024

// Author is a book author.
type Author struct {
	ID   string
	Name string
}

// Category is a catalog category. Categories take no part in search ranking.
type Category struct {
	ID   string
	Name string
}

// Book is the catalog record read by the search engine (immutable value object).
type Book struct {
	id          string
	title       string
	isbn        string
	description string
	price       *float64
	authors     []Author
	categories  []Category
}

// New validates and creates a Book.
// Title is required; ISBN is optional but must be digits and dashes (trailing X allowed).
func New(
	id, title, isbn, description string, price *float64,
	authors []Author, categories []Category,
) (Book, error) {
	if id == "" {
		return Book{}, fmt.Errorf("book ID is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Book{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return Book{}, fmt.Errorf("title too long (max %d bytes)", MaxTitleLength)
	}
	isbn = strings.TrimSpace(isbn)
	if isbn != "" && !isbnRegex.MatchString(isbn) {
		return Book{}, fmt.Errorf("invalid ISBN %q: digits and dashes only", isbn)
	}
	if price != nil && *price < 0 {
		return Book{}, fmt.Errorf("price must not be negative")
	}
	for i, a := range authors {
		if strings.TrimSpace(a.Name) == "" {
			return Book{}, fmt.Errorf("author %d: name is required", i)
		}
	}

	return Reconstruct(id, title, isbn, description, price, authors, categories), nil
}

// Reconstruct creates a Book without validation (storage hydration).
func Reconstruct(
	id, title, isbn, description string, price *float64,
	authors []Author, categories []Category,
) Book {
	var p *float64
	if price != nil {
		v := *price
		p = &v
	}
	return Book{
		id:          id,
		title:       title,
		isbn:        isbn,
		description: description,
		price:       p,
		authors:     append([]Author(nil), authors...),
		categories:  append([]Category(nil), categories...),
	}
}

// ID returns the book identifier.
func (b *Book) ID() string { return b.id }

// Title returns the book title.
func (b *Book) Title() string { return b.title }

// ISBN returns the ISBN as stored (dashes preserved).
func (b *Book) ISBN() string { return b.isbn }

// Description returns the free-text description.
func (b *Book) Description() string { return b.description }

// Price returns the price, nil when unset.
func (b *Book) Price() *float64 { return b.price }

// Authors returns the associated authors.
func (b *Book) Authors() []Author { return b.authors }

// Categories returns the associated categories.
func (b *Book) Categories() []Category { return b.categories }

// AuthorNames returns the author names in association order.
func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.authors))
	for _, a := range b.authors {
		names = append(names, a.Name)
	}
	return names
}

// SearchText is the per-book search index blob: title, ISBN and author names.
// The description is deliberately left out.
func (b *Book) SearchText() string {
	parts := make([]string, 0, 2+len(b.authors))
	parts = append(parts, b.title)
	if b.isbn != "" {
		parts = append(parts, b.isbn)
	}
	parts = append(parts, b.AuthorNames()...)
	return strings.Join(parts, " ")
}
