package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"shopscout/searchservice/internal/domain"
)

var (
	ErrInvalidQuery  = errors.New("query must be at least 2 characters")
	ErrNoRetailers   = errors.New("no retailers configured")
	ErrNotConfigured = errors.New("shopping search is not configured")
)

// Retailer is one scraped source: a search returns the products its
// extraction chain produced plus the name of the stage that produced them.
type Retailer interface {
	Name() string
	Search(ctx context.Context, query string) (domain.Extraction, error)
}

// ShoppingClient is an optional structured shopping-search API used by the
// shopping mode instead of scraping.
type ShoppingClient interface {
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

type Service struct {
	retailers     []Retailer
	timeout       time.Duration
	cacheDisabled bool
	cacheTTL      time.Duration
	cacheMu       sync.Mutex
	cache         map[string]*cachedResult
	redisCache    *RedisCacheBackend
	shopping      ShoppingClient
	healthMu      sync.Mutex
	health        map[string]*retailerHealth
}

type ServiceOption func(*Service)

func WithRedisCache(backend *RedisCacheBackend) ServiceOption {
	return func(s *Service) {
		s.redisCache = backend
	}
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithCacheDisabled(disabled bool) ServiceOption {
	return func(s *Service) {
		s.cacheDisabled = disabled
	}
}

func WithShopping(client ShoppingClient) ServiceOption {
	return func(s *Service) {
		s.shopping = client
	}
}

func NewService(retailers []Retailer, timeout time.Duration, opts ...ServiceOption) *Service {
	kept := make([]Retailer, 0, len(retailers))
	for _, retailer := range retailers {
		if retailer != nil && retailer.Name() != "" {
			kept = append(kept, retailer)
		}
	}

	if timeout <= 0 {
		timeout = 25 * time.Second
	}

	svc := &Service{
		retailers: kept,
		timeout:   timeout,
		cacheTTL:  defaultCacheTTL,
		cache:     make(map[string]*cachedResult),
		health:    make(map[string]*retailerHealth),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Retailers returns the configured retailer names.
func (s *Service) Retailers() []string {
	names := make([]string, 0, len(s.retailers))
	for _, retailer := range s.retailers {
		names = append(names, retailer.Name())
	}
	return names
}
