package bookcafe

import (
	"fmt"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain"
	dombatch "github.com/tejaspanchall/BookCafe-Backend/internal/domain/batch"
	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// Search types accepted by Client.Search. Any other value searches all fields;
// "name" is accepted for title.
const (
	SearchTitle  = "title"
	SearchISBN   = "isbn"
	SearchAuthor = "author"
	SearchAll    = "all"
)

// Author is a book author.
type Author struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Category is a catalog category. Categories do not affect search.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Book is a catalog record.
type Book struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	ISBN        string     `yaml:"isbn,omitempty" json:"isbn,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Price       *float64   `yaml:"price,omitempty" json:"price,omitempty"`
	Authors     []Author   `yaml:"authors,omitempty" json:"authors,omitempty"`
	Categories  []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// BatchResult is the outcome of one book in an Import.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

func toInternalBook(b Book) (dombook.Book, error) {
	authors := make([]dombook.Author, len(b.Authors))
	for i, a := range b.Authors {
		authors[i] = dombook.Author{ID: a.ID, Name: a.Name}
	}
	categories := make([]dombook.Category, len(b.Categories))
	for i, c := range b.Categories {
		categories[i] = dombook.Category{ID: c.ID, Name: c.Name}
	}

	out, err := dombook.New(b.ID, b.Title, b.ISBN, b.Description, b.Price, authors, categories)
	if err != nil {
		return dombook.Book{}, fmt.Errorf("book %q: %w: %w", b.ID, domain.ErrInvalidBook, err)
	}
	return out, nil
}

func fromInternalBook(b dombook.Book) Book {
	out := Book{
		ID:          b.ID(),
		Title:       b.Title(),
		ISBN:        b.ISBN(),
		Description: b.Description(),
		Price:       b.Price(),
	}
	for _, a := range b.Authors() {
		out.Authors = append(out.Authors, Author{ID: a.ID, Name: a.Name})
	}
	for _, c := range b.Categories() {
		out.Categories = append(out.Categories, Category{ID: c.ID, Name: c.Name})
	}
	return out
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:  r.ID(),
			OK:  r.Status() == dombatch.StatusOK,
			Err: r.Err(),
		}
	}
	return out
}
