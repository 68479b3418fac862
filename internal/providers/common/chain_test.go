package common

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shopscout/searchservice/internal/domain"
)

func TestChainFirstNonEmptyWins(t *testing.T) {
	calls := make([]string, 0, 3)
	chain := NewChain("Amazon", []Strategy{
		{Name: "schema", Run: func(context.Context, string) ([]domain.Product, error) {
			calls = append(calls, "schema")
			return nil, nil
		}},
		{Name: "static", Run: func(context.Context, string) ([]domain.Product, error) {
			calls = append(calls, "static")
			return []domain.Product{{Name: "iPhone 16", Retailer: "Amazon"}}, nil
		}},
		{Name: "jsonld", Run: func(context.Context, string) ([]domain.Product, error) {
			calls = append(calls, "jsonld")
			return []domain.Product{{Name: "never reached"}}, nil
		}},
	})

	extraction, err := chain.Run(context.Background(), "iphone 16")
	if err != nil {
		t.Fatalf("chain error: %v", err)
	}
	if extraction.Stage != "static" {
		t.Fatalf("stage = %q, want static", extraction.Stage)
	}
	if len(extraction.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(extraction.Products))
	}
	if strings.Join(calls, ",") != "schema,static" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestChainSwallowsStageErrors(t *testing.T) {
	chain := NewChain("Flipkart", []Strategy{
		{Name: "schema", Run: func(context.Context, string) ([]domain.Product, error) {
			return nil, errors.New("selector drift")
		}},
		{Name: "static", Run: func(context.Context, string) ([]domain.Product, error) {
			return []domain.Product{{Name: "Galaxy S25"}}, nil
		}},
	})

	extraction, err := chain.Run(context.Background(), "galaxy s25")
	if err != nil {
		t.Fatalf("chain error: %v", err)
	}
	if extraction.Stage != "static" || len(extraction.Products) != 1 {
		t.Fatalf("unexpected extraction: %#v", extraction)
	}
}

func TestChainAllEmptyIsNotAnError(t *testing.T) {
	chain := NewChain("Amazon", []Strategy{
		{Name: "schema", Run: func(context.Context, string) ([]domain.Product, error) { return nil, nil }},
		{Name: "static", Run: func(context.Context, string) ([]domain.Product, error) { return nil, errors.New("blocked") }},
	})

	extraction, err := chain.Run(context.Background(), "iphone 16")
	if err != nil {
		t.Fatalf("chain error: %v", err)
	}
	if len(extraction.Products) != 0 || extraction.Stage != "" {
		t.Fatalf("expected empty extraction, got %#v", extraction)
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	chain := NewChain("Amazon", []Strategy{
		{Name: "schema", Run: func(context.Context, string) ([]domain.Product, error) {
			called = true
			return nil, nil
		}},
	})

	_, err := chain.Run(ctx, "iphone 16")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("strategy should not run after cancellation")
	}
}

func TestNormalizeRawItems(t *testing.T) {
	items := []domain.RawItem{
		{
			"title":       "  Apple   iPhone 16 128GB ",
			"price":       "₹79,900",
			"rating":      "4.5 out of 5 stars",
			"product_url": "/dp/B0DGJ7TGDR",
			"image":       "https://img.example/1.jpg",
		},
		{"title": "abc", "price": "₹1"},
		{"title": "12345", "price": "₹1"},
		{"title": "Galaxy S25", "original_price": "₹89,900", "price": "₹74,999", "deal_label": "Deal of the Day"},
	}

	products := NormalizeRawItems(items, "Amazon", "https://www.amazon.in")
	if len(products) != 2 {
		t.Fatalf("expected 2 products after junk filtering, got %d", len(products))
	}

	first := products[0]
	if first.Name != "Apple iPhone 16 128GB" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Price != 79900 {
		t.Errorf("price = %v", first.Price)
	}
	if first.Rating == nil || *first.Rating != 4.5 {
		t.Errorf("rating = %v", first.Rating)
	}
	if first.URL != "https://www.amazon.in/dp/B0DGJ7TGDR" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Retailer != "Amazon" {
		t.Errorf("retailer = %q", first.Retailer)
	}

	second := products[1]
	if !strings.Contains(second.Discount, "Original: ₹89,900") ||
		!strings.Contains(second.Discount, "Deal of the Day") ||
		!strings.Contains(second.Discount, "17% off") {
		t.Errorf("discount = %q", second.Discount)
	}
}

func TestMergeByName(t *testing.T) {
	rating := 4.4
	primary := []domain.Product{
		{Name: "iPhone 16", Price: 79900, Retailer: "Amazon"},
		{Name: "iPhone 16 Plus", Price: 89900, URL: "https://a/plus", Retailer: "Amazon"},
	}
	secondary := []domain.Product{
		{Name: "iphone 16", Price: 79900, URL: "https://a/16", Image: "https://i/16.jpg", Rating: &rating},
		{Name: "iPhone 16 Pro", Price: 119900},
	}

	merged := MergeByName(primary, secondary)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged products, got %d", len(merged))
	}
	if merged[0].URL != "https://a/16" || merged[0].Image != "https://i/16.jpg" {
		t.Errorf("missing fields not filled: %#v", merged[0])
	}
	if merged[0].Rating == nil || *merged[0].Rating != 4.4 {
		t.Errorf("rating not filled: %v", merged[0].Rating)
	}
	if merged[1].URL != "https://a/plus" {
		t.Errorf("existing url overwritten: %q", merged[1].URL)
	}
	if merged[2].Name != "iPhone 16 Pro" {
		t.Errorf("unmatched secondary not appended: %#v", merged[2])
	}
}
