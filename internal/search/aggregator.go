package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"shopscout/searchservice/internal/domain"
)

// maxConcurrentRetailers limits the number of retailer chains that can run
// simultaneously so a wide retailer set does not overwhelm remote sites.
const maxConcurrentRetailers = 10

const (
	defaultLimit = 5
	maxLimit     = 20
)

type preparedSearch struct {
	query              string
	limit              int
	excludeAccessories bool
}

func (s *Service) prepareSearch(request domain.SearchRequest) (preparedSearch, error) {
	query := strings.TrimSpace(request.Query)
	if len([]rune(query)) < 2 {
		return preparedSearch{}, ErrInvalidQuery
	}

	limit := request.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return preparedSearch{
		query:              query,
		limit:              limit,
		excludeAccessories: request.ExcludeAccessories,
	}, nil
}

// Search runs the full scrape pipeline across every configured retailer:
// concurrent extraction chains, cross-source enrichment, per-retailer
// relevance caps, scoring, grouping and a best-deal recommendation.
func (s *Service) Search(ctx context.Context, request domain.SearchRequest) (domain.SearchResult, error) {
	prepared, err := s.prepareSearch(request)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if len(s.retailers) == 0 {
		return domain.SearchResult{}, ErrNoRetailers
	}

	if s.cacheDisabled || request.NoCache {
		return s.executeSearch(ctx, prepared)
	}

	startedAt := time.Now()
	cacheKey := buildCacheKey("scrape", domain.SearchRequest{
		Query:              prepared.query,
		Limit:              prepared.limit,
		ExcludeAccessories: prepared.excludeAccessories,
	})
	if cached, ok := s.cacheLookup(cacheKey, startedAt); ok {
		cached.ElapsedMS = time.Since(startedAt).Milliseconds()
		return cached, nil
	}

	result, err := s.executeSearch(ctx, prepared)
	if err != nil {
		return domain.SearchResult{}, err
	}
	s.cacheStore(cacheKey, result, time.Now())
	return result, nil
}

func (s *Service) executeSearch(ctx context.Context, prepared preparedSearch) (domain.SearchResult, error) {
	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startedAt := time.Now()
	statuses := make([]domain.RetailerStatus, len(s.retailers))
	extractions := make([][]domain.Product, len(s.retailers))

	var mu sync.Mutex
	sem := semaphore.NewWeighted(maxConcurrentRetailers)
	var wg sync.WaitGroup

	for i, retailer := range s.retailers {
		wg.Add(1)
		go func(index int, current Retailer) {
			defer wg.Done()

			name := current.Name()
			if err := sem.Acquire(runCtx, 1); err != nil {
				mu.Lock()
				statuses[index] = domain.RetailerStatus{Name: name, OK: false, Error: "context cancelled"}
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			now := time.Now()
			if blocked, until, lastErr := s.isRetailerBlocked(name, now); blocked {
				mu.Lock()
				statuses[index] = domain.RetailerStatus{
					Name:  name,
					OK:    false,
					Error: fmt.Sprintf("retailer temporarily unhealthy until %s: %s", until.UTC().Format(time.RFC3339), lastErr),
				}
				mu.Unlock()
				return
			}

			// The chain runs once: each stage carries its own retries, and a
			// chain with every stage empty is a valid outcome, not a failure
			// worth repeating.
			retailerStartedAt := time.Now()
			extraction, searchErr := current.Search(runCtx, prepared.query)
			elapsed := time.Since(retailerStartedAt)
			s.recordRetailerResult(name, searchErr, elapsed, time.Now())

			status := domain.RetailerStatus{
				Name:  name,
				OK:    searchErr == nil,
				Count: len(extraction.Products),
				Stage: extraction.Stage,
			}
			if searchErr != nil {
				status.Error = searchErr.Error()
				slog.Warn("retailer search failed",
					slog.String("retailer", name),
					slog.String("query", prepared.query),
					slog.Int64("elapsedMs", elapsed.Milliseconds()),
					slog.String("error", searchErr.Error()),
				)
			} else {
				slog.Debug("retailer search completed",
					slog.String("retailer", name),
					slog.String("query", prepared.query),
					slog.Int("results", len(extraction.Products)),
					slog.String("stage", extraction.Stage),
					slog.Int64("elapsedMs", elapsed.Milliseconds()),
				)
			}

			mu.Lock()
			statuses[index] = status
			extractions[index] = extraction.Products
			mu.Unlock()
		}(i, retailer)
	}
	wg.Wait()

	pool := make([]domain.Product, 0, 64)
	for _, products := range extractions {
		pool = append(pool, products...)
	}

	pool = Enrich(pool)
	if prepared.excludeAccessories {
		pool = FilterAccessories(prepared.query, pool)
	}
	pool = capPerRetailer(prepared.query, pool, prepared.limit)
	pool = ScoreLenient(pool)

	recommendation := ""
	if best, ok := PickBest(pool); ok {
		recommendation = Summary(best)
	}

	result := buildResult(prepared.query, pool, statuses, startedAt, recommendation)
	slog.Info("search completed",
		slog.String("query", prepared.query),
		slog.Int("platforms", len(result.Platforms)),
		slog.Int64("elapsedMs", result.ElapsedMS),
	)
	return result, nil
}

// capPerRetailer keeps at most limit products per retailer, chosen by
// relevance.
func capPerRetailer(query string, products []domain.Product, limit int) []domain.Product {
	groups := make(map[string][]domain.Product)
	order := make([]string, 0, 8)
	for _, product := range products {
		key := strings.ToLower(product.Retailer)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], product)
	}

	out := make([]domain.Product, 0, len(products))
	for _, key := range order {
		out = append(out, TopK(query, groups[key], limit)...)
	}
	return out
}

func buildResult(
	query string,
	products []domain.Product,
	statuses []domain.RetailerStatus,
	startedAt time.Time,
	recommendation string,
) domain.SearchResult {
	groups := make(map[string][]domain.Product)
	for _, product := range products {
		retailer := product.Retailer
		if retailer == "" {
			retailer = "Unknown"
		}
		groups[retailer] = append(groups[retailer], product)
	}

	platforms := make([]domain.PlatformGroup, 0, len(groups))
	for retailer, items := range groups {
		sort.SliceStable(items, func(i, j int) bool {
			return scoreOf(items[i]) > scoreOf(items[j])
		})
		low, avg, high := priceStats(items)
		platforms = append(platforms, domain.PlatformGroup{
			Platform:  retailer,
			Products:  items,
			PriceLow:  low,
			PriceAvg:  avg,
			PriceHigh: high,
		})
	}

	// Cheapest platform first; platforms without priced items sort last.
	sort.SliceStable(platforms, func(i, j int) bool {
		left, right := platforms[i].PriceLow, platforms[j].PriceLow
		switch {
		case left != nil && right != nil:
			if *left != *right {
				return *left < *right
			}
		case left != nil:
			return true
		case right != nil:
			return false
		}
		return strings.ToLower(platforms[i].Platform) < strings.ToLower(platforms[j].Platform)
	})

	low, avg, high := priceStats(products)
	return domain.SearchResult{
		Query:          query,
		Platforms:      platforms,
		PriceLow:       low,
		PriceAvg:       avg,
		PriceHigh:      high,
		Recommendation: recommendation,
		Retailers:      statuses,
		ElapsedMS:      time.Since(startedAt).Milliseconds(),
	}
}

func scoreOf(product domain.Product) float64 {
	if product.Score == nil {
		return 0
	}
	return *product.Score
}

// priceStats computes min/avg/max over positive prices only. All three are
// nil when nothing is priced.
func priceStats(products []domain.Product) (*float64, *float64, *float64) {
	sum, count := 0.0, 0
	low, high := 0.0, 0.0
	for _, product := range products {
		if !product.Priced() {
			continue
		}
		if count == 0 {
			low, high = product.Price, product.Price
		}
		if product.Price < low {
			low = product.Price
		}
		if product.Price > high {
			high = product.Price
		}
		sum += product.Price
		count++
	}
	if count == 0 {
		return nil, nil, nil
	}
	avg := round4(sum / float64(count))
	return domain.Float(low), domain.Float(avg), domain.Float(high)
}
