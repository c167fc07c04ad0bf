package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/mode"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/result"
	"github.com/tejaspanchall/BookCafe-Backend/internal/metrics"
)

// --- Mocks ---

type mockRepo struct {
	matchFn func(ctx context.Context, plan *predicate.Plan) ([]result.Candidate, error)
	plans   []*predicate.Plan
}

func (m *mockRepo) Match(ctx context.Context, plan *predicate.Plan) ([]result.Candidate, error) {
	m.plans = append(m.plans, plan)
	if m.matchFn != nil {
		return m.matchFn(ctx, plan)
	}
	return nil, nil
}

func makeRequest(t *testing.T, q string, m mode.Mode, limit int) *request.Request {
	t.Helper()
	r, err := request.New(q, m, 1, limit)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

// --- Tests ---

func TestSearch_EmptyQueryNeverTouchesStorage(t *testing.T) {
	for _, m := range []mode.Mode{mode.Title, mode.Author, mode.ISBN, mode.All} {
		for _, q := range []string{"", "   ", "!!!"} {
			repo := &mockRepo{}
			svc := New(repo, Config{}, nil)

			ids, err := svc.Search(context.Background(), makeRequest(t, q, m, 0))
			if err != nil {
				t.Fatalf("%s %q: unexpected error: %v", m, q, err)
			}
			if len(ids) != 0 {
				t.Errorf("%s %q: ids = %v", m, q, ids)
			}
			if len(repo.plans) != 0 {
				t.Errorf("%s %q: repository called", m, q)
			}
		}
	}
}

func TestSearch_BelowMinimumLength(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, Config{}, nil)
	req, err := request.New("a", mode.Title, 2, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}

	ids, err := svc.Search(context.Background(), &req)
	if err != nil || ids != nil {
		t.Fatalf("ids = %v, err = %v", ids, err)
	}
	if len(repo.plans) != 0 {
		t.Error("repository called for a too-short query")
	}
}

func TestSearch_RanksAndMerges(t *testing.T) {
	repo := &mockRepo{matchFn: func(context.Context, *predicate.Plan) ([]result.Candidate, error) {
		return []result.Candidate{
			result.New("c", 5, 0.9, true),
			result.New("b", 2, 0, false),
			result.New("a", 1, 0, false),
			result.New("c", 2, 0, false),
		}, nil
	}}
	svc := New(repo, Config{}, nil)

	ids, err := svc.Search(context.Background(), makeRequest(t, "dune", mode.All, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a", "c", "b"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestSearch_Limit(t *testing.T) {
	repo := &mockRepo{matchFn: func(context.Context, *predicate.Plan) ([]result.Candidate, error) {
		return []result.Candidate{result.New("a", 1, 0, false), result.New("b", 2, 0, false), result.New("c", 3, 0, false)}, nil
	}}
	svc := New(repo, Config{}, nil)

	ids, err := svc.Search(context.Background(), makeRequest(t, "dune", mode.Title, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestSearch_IndexUnavailableFallsBack(t *testing.T) {
	repo := &mockRepo{matchFn: func(_ context.Context, plan *predicate.Plan) ([]result.Candidate, error) {
		if plan.UsesIndex() {
			return nil, domain.ErrIndexUnavailable
		}
		return []result.Candidate{result.New("a", 3, 0, false)}, nil
	}}
	svc := New(repo, Config{}, nil)
	before := testutil.ToFloat64(metrics.SearchFallbackTotal.WithLabelValues("index_unavailable"))

	ids, err := svc.Search(context.Background(), makeRequest(t, "orwell", mode.All, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"a"}) {
		t.Errorf("ids = %v", ids)
	}
	if len(repo.plans) != 2 {
		t.Fatalf("Match calls = %d, want 2", len(repo.plans))
	}
	retry := repo.plans[1]
	if retry.UsesIndex() || !retry.HasText() || len(retry.Fuzzy) != len(repo.plans[0].Fuzzy) {
		t.Errorf("unexpected retry plan: %+v", retry)
	}
	after := testutil.ToFloat64(metrics.SearchFallbackTotal.WithLabelValues("index_unavailable"))
	if after-before != 1 {
		t.Errorf("fallback counter delta = %v, want 1", after-before)
	}
}

func TestSearch_IndexUnavailableWithoutIndexTargetIsAnError(t *testing.T) {
	repo := &mockRepo{matchFn: func(context.Context, *predicate.Plan) ([]result.Candidate, error) {
		return nil, domain.ErrIndexUnavailable
	}}
	svc := New(repo, Config{}, nil)

	_, err := svc.Search(context.Background(), makeRequest(t, "orwell", mode.Title, 0))
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if len(repo.plans) != 1 {
		t.Errorf("Match calls = %d, want 1", len(repo.plans))
	}
}

func TestSearch_StorageErrorWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &mockRepo{matchFn: func(context.Context, *predicate.Plan) ([]result.Candidate, error) {
		return nil, boom
	}}
	svc := New(repo, Config{}, nil)

	_, err := svc.Search(context.Background(), makeRequest(t, "dune", mode.All, 0))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err.Error() != "match: connection reset" {
		t.Errorf("error = %q", err)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	repo := &mockRepo{matchFn: func(context.Context, *predicate.Plan) ([]result.Candidate, error) {
		return []result.Candidate{
			result.New("z", 2, 0, false),
			result.New("m", 2, 0, false),
			result.New("a", 2, 0, false),
		}, nil
	}}
	svc := New(repo, Config{}, nil)
	req := makeRequest(t, "orw", mode.Author, 0)

	first, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(first, []string{"a", "m", "z"}) {
		t.Errorf("first = %v, second = %v", first, second)
	}
}
