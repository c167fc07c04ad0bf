package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
)

func newTestStore(t *testing.T, books ...book.Book) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Put(context.Background(), books...))
	return s
}

func mustBook(t *testing.T, id, title, isbn string, authors ...string) book.Book {
	t.Helper()
	as := make([]book.Author, len(authors))
	for i, name := range authors {
		as[i] = book.Author{ID: "a-" + strings.ReplaceAll(strings.ToLower(name), " ", "-"), Name: name}
	}
	b, err := book.New(id, title, isbn, "", nil, as, nil)
	require.NoError(t, err)
	return b
}

func textPlan(raw string, targets ...predicate.TextTarget) *predicate.Plan {
	return &predicate.Plan{Text: &predicate.TextClause{
		Query:   query.BuildPrefixQuery(query.Normalize(raw)),
		Targets: targets,
	}}
}

func ids(rows []db.MatchRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), mustBook(t, "1", "Dune", "")))
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	price := 9.99
	b, err := book.New("1", "Good Omens", "978-0-06-085398-3", "apocalypse comedy", &price,
		[]book.Author{{ID: "a1", Name: "Terry Pratchett"}, {ID: "a2", Name: "Neil Gaiman"}},
		[]book.Category{{ID: "c1", Name: "Fantasy"}})
	require.NoError(t, err)
	s := newTestStore(t, b)

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Good Omens", got.Title())
	assert.Equal(t, "978-0-06-085398-3", got.ISBN())
	assert.Equal(t, "apocalypse comedy", got.Description())
	require.NotNil(t, got.Price())
	assert.InDelta(t, 9.99, *got.Price(), 1e-9)
	assert.Equal(t, []string{"Terry Pratchett", "Neil Gaiman"}, got.AuthorNames())
	require.Len(t, got.Categories(), 1)
	assert.Equal(t, "Fantasy", got.Categories()[0].Name)

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, db.ErrKeyNotFound))
}

func TestStore_PutReplacesAuthors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, mustBook(t, "1", "Draft", "", "First Writer"))
	require.NoError(t, s.Put(ctx, mustBook(t, "1", "Final", "", "Second Writer")))

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title())
	assert.Equal(t, []string{"Second Writer"}, got.AuthorNames())

	rows, err := s.Match(ctx, textPlan("first", predicate.TargetIndex))
	require.NoError(t, err)
	assert.Empty(t, rows, "index row must follow the update")
}

func TestStore_DuplicateISBNRejected(t *testing.T) {
	s := newTestStore(t, mustBook(t, "1", "One", "978-1"))
	err := s.Put(context.Background(), mustBook(t, "2", "Two", "978-1"))
	require.Error(t, err)
	assert.True(t, isDBError(err))
	assert.ErrorIs(t, err, db.ErrDuplicate)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t,
		mustBook(t, "1", "1984", "", "George Orwell"),
		mustBook(t, "2", "Animal Farm", "", "George Orwell"),
	)
	require.NoError(t, s.Delete(ctx, "1", "missing"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := s.Match(ctx, textPlan("orwell", predicate.TargetIndex))
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(rows))
}

func TestStore_Match_IndexPrefixAND(t *testing.T) {
	s := newTestStore(t,
		mustBook(t, "1", "The Great Gatsby", "", "F. Scott Fitzgerald"),
		mustBook(t, "2", "Great Expectations", "", "Charles Dickens"),
	)

	rows, err := s.Match(context.Background(), textPlan("great gats", predicate.TargetIndex))
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, ids(rows))
	assert.Equal(t, db.TextOnlyTier, rows[0].Tier)
	assert.True(t, rows[0].Scored)
	assert.Greater(t, rows[0].Score, 0.0)

	rows, err = s.Match(context.Background(), textPlan("Great Nonexistent", predicate.TargetIndex))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_Match_LiveTitleTarget(t *testing.T) {
	s := newTestStore(t, mustBook(t, "1", "Cloud Atlas", "", "David Mitchell"))

	for _, q := range []string{"Atl", "Clo"} {
		rows, err := s.Match(context.Background(), textPlan(q, predicate.TargetTitle))
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(rows), "query %q", q)
	}
	for _, q := range []string{"tla", "lou", "david"} {
		rows, err := s.Match(context.Background(), textPlan(q, predicate.TargetTitle))
		require.NoError(t, err)
		assert.Empty(t, rows, "query %q", q)
	}
}

func TestStore_Match_LiveAuthorTargetSameAuthor(t *testing.T) {
	s := newTestStore(t,
		mustBook(t, "1", "Good Omens", "", "Terry Pratchett", "Neil Gaiman"),
		mustBook(t, "2", "Coraline", "", "Neil Gaiman"),
	)

	rows, err := s.Match(context.Background(), textPlan("neil gai", predicate.TargetAuthor))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(rows))

	rows, err = s.Match(context.Background(), textPlan("terry gaiman", predicate.TargetAuthor))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_Match_FuzzyTiers(t *testing.T) {
	s := newTestStore(t,
		mustBook(t, "1", "1984", ""),
		mustBook(t, "2", "19841", ""),
		mustBook(t, "3", "Year 1984", ""),
		mustBook(t, "4", "X1984", ""),
	)
	plan := &predicate.Plan{Fuzzy: query.BuildFuzzyConditions("1984", predicate.Title)}

	rows, err := s.Match(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, ids(rows))
	assert.Equal(t, 1, rows[0].Tier)
	assert.Equal(t, 2, rows[1].Tier)
	assert.Equal(t, 3, rows[2].Tier)
	for _, r := range rows {
		assert.False(t, r.Scored)
	}
}

func TestStore_Match_FuzzyAuthorAndMultiWord(t *testing.T) {
	s := newTestStore(t,
		mustBook(t, "1", "Emma", "", "Jane Austen"),
		mustBook(t, "2", "Persuasion", "", "Austen Jane Society"),
	)
	plan := &predicate.Plan{Fuzzy: query.BuildFuzzyConditions("Jane Austen", predicate.Author)}

	rows, err := s.Match(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, ids(rows))
	assert.Equal(t, 1, rows[0].Tier)
	assert.Equal(t, 4, rows[1].Tier)
}

func TestStore_Match_FuzzyISBNDashes(t *testing.T) {
	s := newTestStore(t, mustBook(t, "1", "Effective Java", "978-0-13-468599-1"))
	for _, q := range []string{"9780134685991", "978-0-13-468599-1", "468599"} {
		plan := &predicate.Plan{Fuzzy: query.BuildFuzzyConditions(q, predicate.ISBN)}
		rows, err := s.Match(context.Background(), plan)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(rows), "query %q", q)
	}
}

func TestStore_DropIndexAndReindex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, mustBook(t, "1", "Brave New World", "", "Aldous Huxley"))
	require.NoError(t, s.DropIndex(ctx))

	plan := textPlan("huxley", predicate.TargetIndex)
	_, err := s.Match(ctx, plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrIndexUnavailable))

	rows, err := s.Match(ctx, plan.WithoutIndex())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(rows))

	require.NoError(t, s.Put(ctx, mustBook(t, "2", "Island", "", "Aldous Huxley")))

	n, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err = s.Match(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(rows))
}

func TestStore_Match_RejectsDescription(t *testing.T) {
	s := newTestStore(t)
	plan := &predicate.Plan{Fuzzy: []predicate.Condition{
		{Field: predicate.Description, Kind: predicate.Contains, Terms: []string{"x"}, Priority: 3},
	}}
	_, err := s.Match(context.Background(), plan)
	assert.True(t, errors.Is(err, db.ErrUnsupportedField))
}

func TestCompile_BindsUserInput(t *testing.T) {
	plan := &predicate.Plan{
		Text: &predicate.TextClause{
			Query:   predicate.PrefixQuery{Atoms: []string{"robert"}},
			Targets: []predicate.TextTarget{predicate.TargetAuthor, predicate.TargetTitle, predicate.TargetIndex},
		},
		Fuzzy: query.BuildFuzzyConditions("Robert'); DROP TABLE books; --", predicate.Title),
	}
	stmt, args, err := compile(plan)
	require.NoError(t, err)

	assert.NotContains(t, stmt, "DROP")
	assert.NotContains(t, stmt, "robert")
	assert.Equal(t, strings.Count(stmt, "?"), len(args))
	// last placeholder is the FTS expression
	assert.Equal(t, `"robert"*`, args[len(args)-1])
}

func TestFTSExpression(t *testing.T) {
	assert.Equal(t, `"clo"* AND "atl"*`, ftsExpression([]string{"clo", "atl"}))
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

func TestStore_PutRenamedSharedAuthorRefreshesIndex(t *testing.T) {
	ctx := context.Background()
	orwell := []book.Author{{ID: "a1", Name: "George Orwell"}}
	b1, err := book.New("1", "1984", "", "", nil, orwell, nil)
	require.NoError(t, err)
	b2, err := book.New("2", "Animal Farm", "", "", nil, orwell, nil)
	require.NoError(t, err)
	s := newTestStore(t, b1, b2)

	b3, err := book.New("3", "Burmese Days", "", "", nil, []book.Author{{ID: "a1", Name: "Eric Blair"}}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, b3))

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Eric Blair"}, got.AuthorNames())

	index := func(raw string) *predicate.Plan {
		return &predicate.Plan{Text: &predicate.TextClause{
			Query:   query.BuildPrefixQuery(query.Normalize(raw)),
			Targets: []predicate.TextTarget{predicate.TargetIndex},
		}}
	}
	rows, err := s.Match(ctx, index("orwell"))
	require.NoError(t, err)
	assert.Empty(t, rows, "linked books still indexed under the old name")

	rows, err = s.Match(ctx, index("blair"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, ids(rows))
}

func TestStore_Match_IndexKeepsDiacritics(t *testing.T) {
	s := newTestStore(t, mustBook(t, "1", "Émile", ""))

	rows, err := s.Match(context.Background(), textPlan("emile", predicate.TargetIndex))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Match(context.Background(), textPlan("Émile", predicate.TargetIndex))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(rows))
}
