package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"modernc.org/sqlite"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
)

// SQL functions registered with the driver. Fuzzy predicates and live text
// targets call them so stored fields are folded exactly like queries.
const (
	fnFold           = "bookcafe_fold"
	fnFoldISBN       = "bookcafe_fold_isbn"
	fnPrefixCoverage = "bookcafe_prefix_coverage"
)

var (
	registerOnce sync.Once
	errRegister  error
)

func registerFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction(fnFold, 1, foldFunc(query.Fold)); err != nil {
			errRegister = fmt.Errorf("register %s: %w", fnFold, err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction(fnFoldISBN, 1, foldFunc(query.FoldISBN)); err != nil {
			errRegister = fmt.Errorf("register %s: %w", fnFoldISBN, err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction(fnPrefixCoverage, 2, prefixCoverage); err != nil {
			errRegister = fmt.Errorf("register %s: %w", fnPrefixCoverage, err)
		}
	})
	return errRegister
}

func foldFunc(fold func(string) string) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		return fold(textArg(args[0])), nil
	}
}

// prefixCoverage(value, atoms) folds value and scores it against the
// space-separated atoms. 0 means no match.
func prefixCoverage(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	atoms := strings.Fields(textArg(args[1]))
	score, ok := query.PrefixCoverage(atoms, query.Fold(textArg(args[0])))
	if !ok {
		return 0.0, nil
	}
	return score, nil
}

func textArg(v driver.Value) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
