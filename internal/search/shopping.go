package search

import (
	"context"
	"log/slog"
	"time"

	"shopscout/searchservice/internal/domain"
)

// SearchShopping serves the structured shopping mode: one API call replaces
// the scrape fan-out, with diversity selection across marketplaces and the
// market-overview recommendation.
func (s *Service) SearchShopping(ctx context.Context, request domain.SearchRequest) (domain.SearchResult, error) {
	if s.shopping == nil || !s.shopping.Enabled() {
		return domain.SearchResult{}, ErrNotConfigured
	}
	prepared, err := s.prepareSearch(request)
	if err != nil {
		return domain.SearchResult{}, err
	}

	startedAt := time.Now()
	cacheKey := buildCacheKey("shopping", domain.SearchRequest{
		Query: prepared.query,
		Limit: prepared.limit,
	})
	if !s.cacheDisabled && !request.NoCache {
		if cached, ok := s.cacheLookup(cacheKey, startedAt); ok {
			cached.ElapsedMS = time.Since(startedAt).Milliseconds()
			return cached, nil
		}
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var products []domain.Product
	err = RetryWithBackoff(runCtx, DefaultRetryConfig(), func() error {
		var apiErr error
		products, apiErr = s.shopping.Search(runCtx, prepared.query, prepared.limit)
		return apiErr
	})
	if err != nil {
		s.recordRetailerResult("shopping", err, time.Since(startedAt), time.Now())
		return domain.SearchResult{}, err
	}
	s.recordRetailerResult("shopping", nil, time.Since(startedAt), time.Now())

	selected := Diversify(products, prepared.limit)
	selected = ScoreLenient(selected)

	recommendation := ""
	if best, ok := PickBest(selected); ok {
		recommendation = ShoppingSummary(selected, best)
	}

	statuses := []domain.RetailerStatus{{
		Name:  "shopping",
		OK:    true,
		Count: len(products),
		Stage: "api",
	}}
	result := buildResult(prepared.query, selected, statuses, startedAt, recommendation)

	if !s.cacheDisabled && !request.NoCache {
		s.cacheStore(cacheKey, result, time.Now())
	}
	slog.Info("shopping search completed",
		slog.String("query", prepared.query),
		slog.Int("results", len(selected)),
		slog.Int64("elapsedMs", result.ElapsedMS),
	)
	return result, nil
}
