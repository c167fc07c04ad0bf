package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

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

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpMatch, Err: errClosed}
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		if plan.UsesIndex() && isMissingIndex(err) {
			return nil, &db.Error{Op: db.OpMatch, Err: fmt.Errorf("%w: %w", db.ErrIndexUnavailable, err)}
		}
		return nil, &db.Error{Op: db.OpMatch, Err: err}
	}
	defer rows.Close()

	var out []db.MatchRow
	for rows.Next() {
		var id string
		var tier int
		var tIndex, tTitle, tAuthor sql.NullFloat64
		if err := rows.Scan(&id, &tier, &tIndex, &tTitle, &tAuthor); err != nil {
			return nil, &db.Error{Op: db.OpMatch, Err: fmt.Errorf("scan: %w", err)}
		}
		row := db.MatchRow{ID: id, Tier: tier}
		for _, v := range []sql.NullFloat64{tIndex, tTitle, tAuthor} {
			if !v.Valid || v.Float64 <= 0 {
				continue
			}
			if !row.Scored || v.Float64 > row.Score {
				row.Score = v.Float64
			}
			row.Scored = true
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpMatch, Err: err}
	}
	return out, nil
}

func isMissingIndex(err error) bool {
	return strings.Contains(err.Error(), "no such table: "+indexTable)
}

// builder collects positional arguments in the order their placeholders
// appear in the statement.
type builder struct {
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "?"
}

const authorJoin = `FROM book_authors ba JOIN authors a ON a.id = ba.author_id WHERE ba.book_id = b.id`

func compile(plan *predicate.Plan) (string, []any, error) {
	var b builder

	tier, err := b.tierExpr(plan.Fuzzy)
	if err != nil {
		return "", nil, err
	}

	// Placeholders are bound in statement order: tier, title, author, index.
	tTitle, tAuthor := "NULL", "NULL"
	useIndex := hasTarget(plan, predicate.TargetIndex)
	if plan.HasText() {
		atoms := strings.Join(plan.Text.Query.Atoms, " ")
		if hasTarget(plan, predicate.TargetTitle) {
			tTitle = fnPrefixCoverage + "(b.title, " + b.arg(atoms) + ")"
		}
		if hasTarget(plan, predicate.TargetAuthor) {
			tAuthor = "(SELECT MAX(" + fnPrefixCoverage + "(a.name, " + b.arg(atoms) + ")) " + authorJoin + ")"
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, tier, t_index, t_title, t_author FROM (SELECT b.id AS id, ")
	sb.WriteString(tier)
	sb.WriteString(" AS tier, ")
	if useIndex {
		sb.WriteString("fts.score")
	} else {
		sb.WriteString("NULL")
	}
	sb.WriteString(" AS t_index, ")
	sb.WriteString(tTitle)
	sb.WriteString(" AS t_title, ")
	sb.WriteString(tAuthor)
	sb.WriteString(" AS t_author FROM books b")
	if useIndex {
		sb.WriteString(" LEFT JOIN (SELECT book_id, -bm25(book_search) AS score FROM book_search WHERE book_search MATCH ")
		sb.WriteString(b.arg(ftsExpression(plan.Text.Query.Atoms)))
		sb.WriteString(") fts ON fts.book_id = b.id")
	}
	fmt.Fprintf(&sb, ") WHERE tier < %d OR t_index IS NOT NULL OR t_title > 0 OR t_author > 0 ORDER BY id", db.TextOnlyTier)

	return sb.String(), b.args, nil
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

// ftsExpression renders atoms as FTS5 prefix phrases joined by AND.
// Atoms are letters and digits only, so quoting cannot be broken.
func ftsExpression(atoms []string) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = `"` + a + `"*`
	}
	return strings.Join(parts, " AND ")
}

func (b *builder) tierExpr(conds []predicate.Condition) (string, error) {
	if len(conds) == 0 {
		return fmt.Sprint(db.TextOnlyTier), nil
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
		return b.compare(fnFold+"(b.title)", c)
	case predicate.ISBN:
		return b.compare(fnFoldISBN+"(b.isbn)", c)
	case predicate.Author:
		inner, err := b.compare(fnFold+"(a.name)", c)
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
		return "instr(" + field + ", " + b.arg(c.Terms[0]) + ") = 1", nil
	case predicate.Contains:
		return "instr(" + field + ", " + b.arg(c.Terms[0]) + ") > 0", nil
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
	first := b.arg(term)
	second := b.arg(" " + term)
	return "(instr(" + field + ", " + first + ") = 1 OR instr(" + field + ", " + second + ") > 0)"
}
