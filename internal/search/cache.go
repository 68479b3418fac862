package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"shopscout/searchservice/internal/domain"
	"shopscout/searchservice/internal/metrics"
)

const (
	defaultCacheTTL        = 10 * time.Minute
	defaultCacheMaxEntries = 200
)

type cachedResult struct {
	result    domain.SearchResult
	updatedAt time.Time
	expiresAt time.Time
}

func (s *Service) cacheLookup(key string, now time.Time) (domain.SearchResult, bool) {
	// Try Redis first
	if s.redisCache != nil {
		result, found, err := s.redisCache.Get(context.Background(), key)
		if err == nil && found {
			metrics.CacheHitsTotal.Inc()
			s.cacheStoreMemoryOnly(key, result, now)
			return result, true
		}
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return domain.SearchResult{}, false
	}
	if now.After(entry.expiresAt) {
		metrics.CacheMissesTotal.Inc()
		delete(s.cache, key)
		return domain.SearchResult{}, false
	}
	metrics.CacheHitsTotal.Inc()
	return cloneResult(entry.result), true
}

func (s *Service) cacheStore(key string, result domain.SearchResult, now time.Time) {
	ttl := s.cacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	if s.redisCache != nil {
		_ = s.redisCache.Set(context.Background(), key, result, ttl)
	}
	s.cacheStoreMemoryOnly(key, result, now)
}

func (s *Service) cacheStoreMemoryOnly(key string, result domain.SearchResult, now time.Time) {
	ttl := s.cacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[key] = &cachedResult{
		result:    cloneResult(result),
		updatedAt: now,
		expiresAt: now.Add(ttl),
	}
	s.trimCacheLocked(now)
}

func (s *Service) trimCacheLocked(now time.Time) {
	for key, entry := range s.cache {
		if now.After(entry.expiresAt) {
			delete(s.cache, key)
		}
	}
	if len(s.cache) <= defaultCacheMaxEntries {
		return
	}

	type pair struct {
		key   string
		entry *cachedResult
	}
	items := make([]pair, 0, len(s.cache))
	for key, entry := range s.cache {
		items = append(items, pair{key: key, entry: entry})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].entry.updatedAt.Before(items[j].entry.updatedAt)
	})
	for i := 0; i < len(items)-defaultCacheMaxEntries; i++ {
		delete(s.cache, items[i].key)
	}
}

func cloneResult(result domain.SearchResult) domain.SearchResult {
	cloned := result
	if result.Platforms != nil {
		cloned.Platforms = make([]domain.PlatformGroup, len(result.Platforms))
		for i, group := range result.Platforms {
			copied := group
			copied.Products = cloneProducts(group.Products)
			copied.PriceLow = cloneFloat(group.PriceLow)
			copied.PriceAvg = cloneFloat(group.PriceAvg)
			copied.PriceHigh = cloneFloat(group.PriceHigh)
			cloned.Platforms[i] = copied
		}
	}
	cloned.PriceLow = cloneFloat(result.PriceLow)
	cloned.PriceAvg = cloneFloat(result.PriceAvg)
	cloned.PriceHigh = cloneFloat(result.PriceHigh)
	if result.Retailers != nil {
		cloned.Retailers = append([]domain.RetailerStatus(nil), result.Retailers...)
	}
	return cloned
}

func cloneProducts(products []domain.Product) []domain.Product {
	if products == nil {
		return nil
	}
	cloned := make([]domain.Product, len(products))
	for i, product := range products {
		copied := product
		copied.Rating = cloneFloat(product.Rating)
		copied.Score = cloneFloat(product.Score)
		cloned[i] = copied
	}
	return cloned
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func buildCacheKey(mode string, request domain.SearchRequest) string {
	return strings.Join([]string{
		"m=" + mode,
		"q=" + strings.ToLower(strings.TrimSpace(request.Query)),
		"l=" + strconv.Itoa(request.Limit),
		"x=" + strconv.FormatBool(request.ExcludeAccessories),
	}, "|")
}
