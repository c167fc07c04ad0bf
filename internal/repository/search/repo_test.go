package search

import (
	"context"
	"errors"
	"testing"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
)

func TestMatch_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	plan := titlePlan()

	ms.matchFn = func(_ context.Context, got *predicate.Plan) ([]db.MatchRow, error) {
		if got != plan {
			t.Error("plan not passed through")
		}
		return []db.MatchRow{
			{ID: "b1", Tier: 1},
			{ID: "b2", Tier: db.TextOnlyTier, Score: 0.42, Scored: true},
		}, nil
	}

	cands, err := repo.Match(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}
	if cands[0].ID() != "b1" || cands[0].Tier() != 1 || cands[0].Scored() {
		t.Errorf("unexpected first candidate: %+v", cands[0])
	}
	if cands[1].Score() != 0.42 || !cands[1].Scored() {
		t.Errorf("unexpected second candidate: %+v", cands[1])
	}
}

func TestMatch_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)
	cands, err := repo.Match(context.Background(), titlePlan())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cands != nil {
		t.Fatalf("expected nil, got %v", cands)
	}
}

func TestMatch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  error
		other error
	}{
		{
			name:  "index unavailable",
			err:   &db.Error{Op: db.OpMatch, Err: db.ErrIndexUnavailable},
			want:  domain.ErrIndexUnavailable,
			other: domain.ErrStorage,
		},
		{
			name:  "unsupported field",
			err:   &db.Error{Op: db.OpMatch, Err: db.ErrUnsupportedField},
			want:  domain.ErrUnsupportedField,
			other: domain.ErrIndexUnavailable,
		},
		{
			name:  "storage fault",
			err:   &db.Error{Op: db.OpMatch, Err: errors.New("connection reset")},
			want:  domain.ErrStorage,
			other: domain.ErrIndexUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.matchFn = func(context.Context, *predicate.Plan) ([]db.MatchRow, error) {
				return nil, tt.err
			}

			_, err := repo.Match(context.Background(), titlePlan())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if errors.Is(err, tt.other) {
				t.Fatalf("did not expect %v in %v", tt.other, err)
			}
			var dbErr *db.Error
			if !errors.As(err, &dbErr) {
				t.Fatal("db.Error should stay in the chain")
			}
		})
	}
}

func TestMatch_ClampsTier(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.matchFn = func(context.Context, *predicate.Plan) ([]db.MatchRow, error) {
		return []db.MatchRow{{ID: "b1", Tier: 9}}, nil
	}
	cands, err := repo.Match(context.Background(), titlePlan())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cands[0].Tier() != db.TextOnlyTier {
		t.Errorf("tier = %d, want %d", cands[0].Tier(), db.TextOnlyTier)
	}
}
