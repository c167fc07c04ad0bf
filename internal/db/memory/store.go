package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
)

// Compile-time check: Store implements db.Catalog.
var _ db.Catalog = (*Store)(nil)

const (
	foldAnalyzerName = "bookcafe_fold"
	searchField      = "search"
)

var errClosed = errors.New("store is closed")

// indexDoc is the per-book search blob stored in bleve, already folded.
type indexDoc struct {
	Search string `json:"search"`
}

// Store is an in-memory catalog. Live records sit in a map; the precomputed
// search blob lives in a bleve MemOnly index that can be dropped and rebuilt.
type Store struct {
	mu     sync.RWMutex
	books  map[string]book.Book
	index  bleve.Index
	closed bool
}

// NewStore creates an empty in-memory catalog with a fresh index.
func NewStore() (*Store, error) {
	idx, err := newIndex()
	if err != nil {
		return nil, err
	}
	return &Store{books: make(map[string]book.Book), index: idx}, nil
}

func newIndex() (bleve.Index, error) {
	m, err := newIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("create index mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return idx, nil
}

// newIndexMapping splits on whitespace only: blobs are folded before indexing,
// so every stop word and digit run survives as a token.
func newIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(foldAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("add analyzer: %w", err)
	}
	im.DefaultAnalyzer = foldAnalyzerName
	return im, nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

// Close releases the index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// DropIndex discards the precomputed index. Live records stay searchable
// through fuzzy conditions and live text targets until Reindex.
func (s *Store) DropIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	if err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

// Get returns a book by ID.
func (s *Store) Get(_ context.Context, id string) (book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return book.Book{}, &db.Error{Op: db.OpGetBook, Err: errClosed}
	}
	b, ok := s.books[id]
	if !ok {
		return book.Book{}, db.ErrKeyNotFound
	}
	return b, nil
}

// Count returns the number of stored books.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, &db.Error{Op: db.OpCount, Err: errClosed}
	}
	return len(s.books), nil
}

// Put upserts books and refreshes their index entries.
func (s *Store) Put(_ context.Context, books ...book.Book) error {
	if len(books) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpPut, Err: errClosed}
	}

	if err := s.checkISBNs(books); err != nil {
		return &db.Error{Op: db.OpPut, Err: err}
	}
	for _, b := range books {
		s.books[b.ID()] = b
	}
	touched := append(append([]book.Book(nil), books...), s.propagateNames(books)...)
	if s.index == nil {
		return nil
	}

	batch := s.index.NewBatch()
	for _, b := range touched {
		if err := batch.Index(b.ID(), toIndexDoc(b)); err != nil {
			return &db.Error{Op: db.OpPut, Err: fmt.Errorf("index book %s: %w", b.ID(), err)}
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return &db.Error{Op: db.OpPut, Err: err}
	}
	return nil
}

// propagateNames applies the author and category names carried by books to
// every other stored book sharing those IDs, the way a relational catalog
// would. It returns the rewritten books.
func (s *Store) propagateNames(books []book.Book) []book.Book {
	authors := make(map[string]string)
	categories := make(map[string]string)
	written := make(map[string]bool, len(books))
	for _, b := range books {
		written[b.ID()] = true
		for _, a := range b.Authors() {
			authors[a.ID] = a.Name
		}
		for _, c := range b.Categories() {
			categories[c.ID] = c.Name
		}
	}

	var out []book.Book
	for id, b := range s.books {
		if written[id] {
			continue
		}
		changed := false
		as := append([]book.Author(nil), b.Authors()...)
		for i, a := range as {
			if name, ok := authors[a.ID]; ok && name != a.Name {
				as[i].Name = name
				changed = true
			}
		}
		cs := append([]book.Category(nil), b.Categories()...)
		for i, c := range cs {
			if name, ok := categories[c.ID]; ok && name != c.Name {
				cs[i].Name = name
				changed = true
			}
		}
		if !changed {
			continue
		}
		nb := book.Reconstruct(id, b.Title(), b.ISBN(), b.Description(), b.Price(), as, cs)
		s.books[id] = nb
		out = append(out, nb)
	}
	return out
}

// checkISBNs rejects the batch when a non-empty ISBN would belong to two
// different books, within the batch or against stored records.
func (s *Store) checkISBNs(books []book.Book) error {
	owner := make(map[string]string, len(s.books)+len(books))
	for id, b := range s.books {
		if b.ISBN() != "" {
			owner[b.ISBN()] = id
		}
	}
	incoming := make(map[string]bool, len(books))
	for _, b := range books {
		incoming[b.ID()] = true
	}
	for isbn, id := range owner {
		if incoming[id] {
			delete(owner, isbn)
		}
	}
	for _, b := range books {
		if b.ISBN() == "" {
			continue
		}
		if id, ok := owner[b.ISBN()]; ok && id != b.ID() {
			return fmt.Errorf("%w: isbn %s already used by book %s", db.ErrDuplicate, b.ISBN(), id)
		}
		owner[b.ISBN()] = b.ID()
	}
	return nil
}

// Delete removes books by ID. Unknown IDs are ignored.
func (s *Store) Delete(_ context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpDelete, Err: errClosed}
	}

	for _, id := range ids {
		delete(s.books, id)
	}
	if s.index == nil {
		return nil
	}

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := s.index.Batch(batch); err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

// Reindex rebuilds the index from live records, recreating it if dropped.
func (s *Store) Reindex(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, &db.Error{Op: db.OpReindex, Err: errClosed}
	}

	idx, err := newIndex()
	if err != nil {
		return 0, &db.Error{Op: db.OpReindex, Err: err}
	}
	batch := idx.NewBatch()
	for id, b := range s.books {
		if err := batch.Index(id, toIndexDoc(b)); err != nil {
			_ = idx.Close()
			return 0, &db.Error{Op: db.OpReindex, Err: fmt.Errorf("index book %s: %w", id, err)}
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return 0, &db.Error{Op: db.OpReindex, Err: err}
	}

	if s.index != nil {
		_ = s.index.Close()
	}
	s.index = idx
	return len(s.books), nil
}

func toIndexDoc(b book.Book) indexDoc {
	return indexDoc{Search: query.Fold(b.SearchText())}
}

// Match evaluates the plan against live records and the bleve index.
func (s *Store) Match(ctx context.Context, plan *predicate.Plan) ([]db.MatchRow, error) {
	if plan.IsEmpty() {
		return nil, nil
	}
	for _, c := range plan.Fuzzy {
		if c.Field != predicate.Title && c.Field != predicate.ISBN && c.Field != predicate.Author {
			return nil, &db.Error{Op: db.OpMatch, Err: fmt.Errorf("%w: %s", db.ErrUnsupportedField, c.Field)}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpMatch, Err: errClosed}
	}

	text, err := s.matchText(ctx, plan)
	if err != nil {
		return nil, err
	}

	rows := make([]db.MatchRow, 0)
	for id, b := range s.books {
		tier := fuzzyTier(plan.Fuzzy, b)
		score, scored := text[id]
		if tier == 0 && !scored {
			continue
		}
		if tier == 0 {
			tier = db.TextOnlyTier
		}
		rows = append(rows, db.MatchRow{ID: id, Tier: tier, Score: score, Scored: scored})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// matchText returns the best text score per matching book ID.
func (s *Store) matchText(ctx context.Context, plan *predicate.Plan) (map[string]float64, error) {
	scores := make(map[string]float64)
	if !plan.HasText() {
		return scores, nil
	}
	keep := func(id string, score float64) {
		if cur, ok := scores[id]; !ok || score > cur {
			scores[id] = score
		}
	}

	atoms := plan.Text.Query.Atoms
	for _, target := range plan.Text.Targets {
		switch target {
		case predicate.TargetIndex:
			hits, err := s.searchIndex(ctx, atoms)
			if err != nil {
				return nil, err
			}
			for id, score := range hits {
				keep(id, score)
			}
		case predicate.TargetTitle:
			for id, b := range s.books {
				if score, ok := query.PrefixCoverage(atoms, query.Fold(b.Title())); ok {
					keep(id, score)
				}
			}
		case predicate.TargetAuthor:
			for id, b := range s.books {
				for _, a := range b.Authors() {
					if score, ok := query.PrefixCoverage(atoms, query.Fold(a.Name)); ok {
						keep(id, score)
					}
				}
			}
		}
	}
	return scores, nil
}

func (s *Store) searchIndex(ctx context.Context, atoms []string) (map[string]float64, error) {
	if s.index == nil {
		return nil, &db.Error{Op: db.OpMatch, Err: db.ErrIndexUnavailable}
	}
	count, err := s.index.DocCount()
	if err != nil {
		return nil, &db.Error{Op: db.OpMatch, Err: err}
	}
	if count == 0 {
		return nil, nil
	}

	conjuncts := make([]blevequery.Query, 0, len(atoms))
	for _, a := range atoms {
		pq := bleve.NewPrefixQuery(a)
		pq.SetField(searchField)
		conjuncts = append(conjuncts, pq)
	}
	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(conjuncts...))
	req.Size = int(count)

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpMatch, Err: err}
	}
	out := make(map[string]float64, len(res.Hits))
	for _, hit := range res.Hits {
		out[hit.ID] = hit.Score
	}
	return out, nil
}

// fuzzyTier returns the best priority among matching conditions, 0 if none match.
func fuzzyTier(conds []predicate.Condition, b book.Book) int {
	best := 0
	for _, c := range conds {
		if best != 0 && c.Priority >= best {
			continue
		}
		if matchesBook(c, b) {
			best = c.Priority
		}
	}
	return best
}

func matchesBook(c predicate.Condition, b book.Book) bool {
	switch c.Field {
	case predicate.Title:
		return query.MatchField(c, b.Title())
	case predicate.ISBN:
		return query.MatchField(c, b.ISBN())
	case predicate.Author:
		for _, a := range b.Authors() {
			if query.MatchField(c, a.Name) {
				return true
			}
		}
	}
	return false
}
