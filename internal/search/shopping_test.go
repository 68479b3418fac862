package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shopscout/searchservice/internal/domain"
)

type fakeShoppingClient struct {
	products  []domain.Product
	err       error
	failFirst error
	enabled   bool
	calls     atomic.Int64
}

func (f *fakeShoppingClient) Enabled() bool { return f.enabled }

func (f *fakeShoppingClient) Search(context.Context, string, int) ([]domain.Product, error) {
	if f.calls.Add(1) == 1 && f.failFirst != nil {
		return nil, f.failFirst
	}
	return f.products, f.err
}

func TestSearchShoppingNotConfigured(t *testing.T) {
	svc := NewService(nil, time.Second)
	if _, err := svc.SearchShopping(context.Background(), domain.SearchRequest{Query: "iphone 16"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	svc = NewService(nil, time.Second, WithShopping(&fakeShoppingClient{enabled: false}))
	if _, err := svc.SearchShopping(context.Background(), domain.SearchRequest{Query: "iphone 16"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for disabled client, got %v", err)
	}
}

func TestSearchShoppingHappyPath(t *testing.T) {
	client := &fakeShoppingClient{
		enabled: true,
		products: []domain.Product{
			{Name: "Apple iPhone 16 128GB", Price: 74999, Retailer: "Flipkart", Rating: domain.Float(4.6), URL: "https://f/1"},
			{Name: "Apple iPhone 16 128GB", Price: 79900, Retailer: "Amazon", Rating: domain.Float(4.5), URL: "https://a/1"},
			{Name: "Apple iPhone 16 128GB", Price: 78990, Retailer: "Croma", URL: "https://c/1"},
		},
	}
	svc := NewService(nil, 5*time.Second, WithShopping(client), WithCacheDisabled(true))

	result, err := svc.SearchShopping(context.Background(), domain.SearchRequest{Query: "iphone 16"})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	if len(result.Retailers) != 1 {
		t.Fatalf("expected 1 status entry, got %d", len(result.Retailers))
	}
	status := result.Retailers[0]
	if status.Name != "shopping" || !status.OK || status.Stage != "api" || status.Count != 3 {
		t.Fatalf("unexpected status: %#v", status)
	}

	if !strings.Contains(result.Recommendation, "Best Deal Found") {
		t.Errorf("recommendation = %q", result.Recommendation)
	}
	if !strings.Contains(result.Recommendation, "Shopping Tip") {
		t.Errorf("recommendation missing tip: %q", result.Recommendation)
	}

	if len(result.Platforms) != 3 {
		t.Fatalf("expected 3 platforms, got %d", len(result.Platforms))
	}
	if result.Platforms[0].Platform != "Flipkart" {
		t.Errorf("cheapest platform first, got %q", result.Platforms[0].Platform)
	}
}

func TestSearchShoppingPropagatesAPIError(t *testing.T) {
	client := &fakeShoppingClient{enabled: true, err: errors.New("shopping API HTTP 401: invalid key")}
	svc := NewService(nil, time.Second, WithShopping(client), WithCacheDisabled(true))

	if _, err := svc.SearchShopping(context.Background(), domain.SearchRequest{Query: "iphone 16"}); err == nil {
		t.Fatal("expected error from API failure")
	}
	if got := client.calls.Load(); got != 1 {
		t.Fatalf("non-transient API error should not retry, got %d calls", got)
	}
}

func TestSearchShoppingRetriesTransientAPIError(t *testing.T) {
	client := &fakeShoppingClient{
		enabled:   true,
		failFirst: errors.New("read: connection reset by peer"),
		products:  []domain.Product{{Name: "Apple iPhone 16", Price: 79900, Retailer: "Amazon"}},
	}
	svc := NewService(nil, 5*time.Second, WithShopping(client), WithCacheDisabled(true))

	result, err := svc.SearchShopping(context.Background(), domain.SearchRequest{Query: "iphone 16"})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if got := client.calls.Load(); got != 2 {
		t.Fatalf("expected a retry after the transient failure, got %d calls", got)
	}
	if len(result.Platforms) != 1 {
		t.Fatalf("unexpected result: %#v", result.Platforms)
	}
}

func TestSearchShoppingDiversifiesDominantRetailers(t *testing.T) {
	products := make([]domain.Product, 0, 8)
	for i, retailer := range []string{"Amazon", "Amazon", "Amazon", "Flipkart", "Flipkart", "Flipkart", "Croma", "Reliance Digital"} {
		products = append(products, domain.Product{
			Name:     "Apple iPhone 16",
			Price:    float64(70000 + i),
			Retailer: retailer,
			URL:      "https://x/" + retailer + string(rune('a'+i)),
		})
	}
	client := &fakeShoppingClient{enabled: true, products: products}
	svc := NewService(nil, 5*time.Second, WithShopping(client), WithCacheDisabled(true))

	result, err := svc.SearchShopping(context.Background(), domain.SearchRequest{Query: "iphone 16", Limit: 6})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	counts := map[string]int{}
	total := 0
	for _, platform := range result.Platforms {
		counts[platform.Platform] += len(platform.Products)
		total += len(platform.Products)
	}
	if total != 6 {
		t.Fatalf("expected 6 selected products, got %d", total)
	}
	if counts["Amazon"] != 2 || counts["Flipkart"] != 2 {
		t.Fatalf("dominant retailers not capped: %v", counts)
	}
	if counts["Croma"] != 1 || counts["Reliance Digital"] != 1 {
		t.Fatalf("smaller retailers missing: %v", counts)
	}
}

func TestSearchShoppingUsesCache(t *testing.T) {
	client := &fakeShoppingClient{
		enabled:  true,
		products: []domain.Product{{Name: "Apple iPhone 16", Price: 79900, Retailer: "Amazon"}},
	}
	svc := NewService(nil, 5*time.Second, WithShopping(client))

	request := domain.SearchRequest{Query: "iphone 16"}
	if _, err := svc.SearchShopping(context.Background(), request); err != nil {
		t.Fatalf("search error: %v", err)
	}
	if _, err := svc.SearchShopping(context.Background(), request); err != nil {
		t.Fatalf("search error: %v", err)
	}
	if got := client.calls.Load(); got != 1 {
		t.Fatalf("expected 1 API call with warm cache, got %d", got)
	}
}
