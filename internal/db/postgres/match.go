package postgres

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
)

// Match compiles the plan into one parameterized statement and runs it.
func (s *Store) Match(ctx context.Context, plan *predicate.Plan) ([]db.MatchRow, error) {
	if plan.IsEmpty() {
		return nil, nil
	}
	stmt, args, err := compile(plan)
	if err != nil {
		return nil, &db.Error{Op: db.OpMatch, Err: err}
	}

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, matchErr(plan, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.MatchRow, error) {
		var (
			id                     string
			tier                   int
			tIndex, tTitle, tAuthr *float64
		)
		if err := row.Scan(&id, &tier, &tIndex, &tTitle, &tAuthr); err != nil {
			return db.MatchRow{}, err
		}
		m := db.MatchRow{ID: id, Tier: tier}
		for _, v := range []*float64{tIndex, tTitle, tAuthr} {
			if v == nil {
				continue
			}
			if !m.Scored || *v > m.Score {
				m.Score = *v
			}
			m.Scored = true
		}
		return m, nil
	})
	if err != nil {
		return nil, matchErr(plan, err)
	}
	return out, nil
}

// matchErr maps a missing search_vector column to db.ErrIndexUnavailable.
func matchErr(plan *predicate.Plan, err error) error {
	if plan.UsesIndex() && pgCode(err) == codeUndefinedColumn {
		return &db.Error{Op: db.OpMatch, Err: fmt.Errorf("%w: %w", db.ErrIndexUnavailable, err)}
	}
	return &db.Error{Op: db.OpMatch, Err: err}
}

// builder numbers placeholders in the order arguments are bound.
type builder struct {
	args []any
}

func (b *builder) arg(v string) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args)) + "::text"
}

const authorJoin = `FROM book_authors ba JOIN authors a ON a.id = ba.author_id WHERE ba.book_id = b.id`

func compile(plan *predicate.Plan) (string, []any, error) {
	var b builder

	tier, err := b.tierExpr(plan.Fuzzy)
	if err != nil {
		return "", nil, err
	}

	tIndex, tTitle, tAuthor := "NULL::float8", "NULL::float8", "NULL::float8"
	if plan.HasText() {
		tsq := "to_tsquery('simple', " + b.arg(plan.Text.Query.String()) + ")"
		if hasTarget(plan, predicate.TargetIndex) {
			tIndex = rankIf("b.search_vector", tsq)
		}
		if hasTarget(plan, predicate.TargetTitle) {
			tTitle = rankIf("to_tsvector('simple', "+foldSQL("b.title")+")", tsq)
		}
		if hasTarget(plan, predicate.TargetAuthor) {
			tAuthor = "(SELECT MAX(" + rankIf("to_tsvector('simple', "+foldSQL("a.name")+")", tsq) + ") " + authorJoin + ")"
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, tier, t_index, t_title, t_author FROM (SELECT b.id AS id, ")
	sb.WriteString(tier)
	sb.WriteString(" AS tier, ")
	sb.WriteString(tIndex)
	sb.WriteString(" AS t_index, ")
	sb.WriteString(tTitle)
	sb.WriteString(" AS t_title, ")
	sb.WriteString(tAuthor)
	sb.WriteString(" AS t_author FROM books b) m")
	fmt.Fprintf(&sb, " WHERE tier < %d OR t_index IS NOT NULL OR t_title IS NOT NULL OR t_author IS NOT NULL ORDER BY id", db.TextOnlyTier)

	return sb.String(), b.args, nil
}

// rankIf yields the rank of vector against tsq, or NULL when it does not match.
func rankIf(vector, tsq string) string {
	return "CASE WHEN " + vector + " @@ " + tsq + " THEN ts_rank(" + vector + ", " + tsq + ")::float8 END"
}

func hasTarget(plan *predicate.Plan, target predicate.TextTarget) bool {
	if !plan.HasText() {
		return false
	}
	for _, t := range plan.Text.Targets {
		if t == target {
			return true
		}
	}
	return false
}

func (b *builder) tierExpr(conds []predicate.Condition) (string, error) {
	if len(conds) == 0 {
		return strconv.Itoa(db.TextOnlyTier), nil
	}
	sorted := append([]predicate.Condition(nil), conds...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	var sb strings.Builder
	sb.WriteString("CASE")
	for _, c := range sorted {
		expr, err := b.condExpr(c)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, " WHEN %s THEN %d", expr, c.Priority)
	}
	fmt.Fprintf(&sb, " ELSE %d END", db.TextOnlyTier)
	return sb.String(), nil
}

func (b *builder) condExpr(c predicate.Condition) (string, error) {
	switch c.Field {
	case predicate.Title:
		return b.compare(foldSQL("b.title"), c)
	case predicate.ISBN:
		return b.compare(foldISBNSQL("b.isbn"), c)
	case predicate.Author:
		inner, err := b.compare(foldSQL("a.name"), c)
		if err != nil {
			return "", err
		}
		return "EXISTS (SELECT 1 " + authorJoin + " AND " + inner + ")", nil
	default:
		return "", fmt.Errorf("%w: %s", db.ErrUnsupportedField, c.Field)
	}
}

func (b *builder) compare(field string, c predicate.Condition) (string, error) {
	if len(c.Terms) == 0 {
		return "", fmt.Errorf("condition %s on %s has no terms", c.Kind, c.Field)
	}
	switch c.Kind {
	case predicate.Exact:
		return field + " = " + b.arg(c.Terms[0]), nil
	case predicate.Prefix:
		return "strpos(" + field + ", " + b.arg(c.Terms[0]) + ") = 1", nil
	case predicate.Contains:
		return "strpos(" + field + ", " + b.arg(c.Terms[0]) + ") > 0", nil
	case predicate.WordBoundary:
		return b.wordStart(field, c.Terms[0]), nil
	case predicate.AllWordsBoundary:
		parts := make([]string, len(c.Terms))
		for i, t := range c.Terms {
			parts[i] = b.wordStart(field, t)
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported condition kind %s", c.Kind)
	}
}

// wordStart matches term at the start of the field or right after a space.
func (b *builder) wordStart(field, term string) string {
	return "strpos(' ' || " + field + ", ' ' || " + b.arg(term) + ") > 0"
}
