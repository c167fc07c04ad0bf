package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
	"github.com/tejaspanchall/BookCafe-Backend/internal/metrics"
)

// Config tunes query translation.
type Config struct {
	// MinPrefixTokenLength keeps shorter tokens out of the prefix clause;
	// they still take part in fuzzy matching. Zero keeps every token.
	MinPrefixTokenLength int
}

// Service translates search requests into match plans and ranks the
// candidates the repository returns.
type Service struct {
	repo                 Repository
	minPrefixTokenLength int
	logger               *zap.Logger
}

// New creates a search service.
func New(repo Repository, cfg Config, logger *zap.Logger) *Service {
	if cfg.MinPrefixTokenLength <= 0 {
		cfg.MinPrefixTokenLength = query.DefaultMinPrefixTokenLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, minPrefixTokenLength: cfg.MinPrefixTokenLength, logger: logger}
}

// Search returns book IDs ranked best first. Empty and too-short queries
// yield no results without touching storage. A missing prefix index is not
// an error: the plan is re-run against live fields.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]string, error) {
	m := string(req.Mode())
	if req.Empty() {
		metrics.SearchRequestsTotal.WithLabelValues(m, "empty").Inc()
		return nil, nil
	}

	start := time.Now()
	plan := s.buildPlan(req)
	if plan.IsEmpty() {
		metrics.SearchRequestsTotal.WithLabelValues(m, "empty").Inc()
		return nil, nil
	}

	cands, err := s.repo.Match(ctx, plan)
	if err != nil && errors.Is(err, domain.ErrIndexUnavailable) && plan.UsesIndex() {
		s.logger.Warn("Search index unavailable, matching live fields",
			zap.String("mode", m), zap.Error(err))
		metrics.SearchFallbackTotal.WithLabelValues("index_unavailable").Inc()
		cands, err = s.repo.Match(ctx, plan.WithoutIndex())
	}
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(m, "error").Inc()
		s.logger.Error("Search failed", zap.String("mode", m), zap.Error(err))
		return nil, fmt.Errorf("match: %w", err)
	}

	ids := rank(cands)
	if limit := req.Limit(); limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	duration := time.Since(start)
	metrics.SearchRequestsTotal.WithLabelValues(m, "ok").Inc()
	metrics.SearchDuration.WithLabelValues(m).Observe(duration.Seconds())
	metrics.SearchResults.WithLabelValues(m).Observe(float64(len(ids)))
	s.logger.Debug("Search completed",
		zap.String("mode", m),
		zap.Int("tokens", len(req.Tokens())),
		zap.Int("candidates", len(cands)),
		zap.Int("results", len(ids)),
		zap.Duration("duration", duration),
	)
	return ids, nil
}
