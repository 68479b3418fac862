package search

import (
	"testing"

	"shopscout/searchservice/internal/domain"
)

func TestEnrichFillsMissingFields(t *testing.T) {
	products := []domain.Product{
		{Name: "Apple iPhone 16 128GB", Price: 79900, Retailer: "Amazon"},
		{
			Name: "Apple iPhone 16 128 GB", Price: 74999, Retailer: "Flipkart",
			URL: "https://f/1", Image: "https://f/1.jpg", Rating: domain.Float(4.4),
		},
	}

	enriched := Enrich(products)

	first := enriched[0]
	if first.URL != "https://f/1" || first.Image != "https://f/1.jpg" {
		t.Fatalf("fields not copied: %#v", first)
	}
	if first.Rating == nil || *first.Rating != 4.4 {
		t.Fatalf("rating not copied: %v", first.Rating)
	}
	// Prices never cross sources.
	if first.Price != 79900 {
		t.Fatalf("price changed: %v", first.Price)
	}
	if products[0].URL != "" {
		t.Fatal("input slice was mutated")
	}
}

func TestEnrichSkipsSameRetailer(t *testing.T) {
	products := []domain.Product{
		{Name: "Apple iPhone 16", Retailer: "Amazon"},
		{Name: "Apple iPhone 16", Retailer: "amazon", URL: "https://a/1", Image: "https://a/1.jpg"},
	}
	enriched := Enrich(products)
	if enriched[0].URL != "" {
		t.Fatal("same-retailer match should not enrich")
	}
}

func TestEnrichTreatsZeroRatingAsMissing(t *testing.T) {
	products := []domain.Product{
		{Name: "Apple iPhone 16", Retailer: "Amazon", URL: "https://a/1", Image: "https://a/1.jpg", Rating: domain.Float(0)},
		{Name: "Apple iPhone 16", Retailer: "Flipkart", Rating: domain.Float(4.4)},
	}
	enriched := Enrich(products)
	if enriched[0].Rating == nil || *enriched[0].Rating != 4.4 {
		t.Fatalf("zero rating not replaced: %v", enriched[0].Rating)
	}
}

func TestEnrichIgnoresWeakMatches(t *testing.T) {
	products := []domain.Product{
		{Name: "Apple iPhone 16", Retailer: "Amazon"},
		{Name: "Bosch Washing Machine 7kg", Retailer: "Flipkart", URL: "https://f/w", Image: "https://f/w.jpg"},
	}
	enriched := Enrich(products)
	if enriched[0].URL != "" {
		t.Fatalf("dissimilar product enriched: %#v", enriched[0])
	}
}

func TestEnrichSingleProduct(t *testing.T) {
	products := []domain.Product{{Name: "Apple iPhone 16", Retailer: "Amazon"}}
	enriched := Enrich(products)
	if len(enriched) != 1 {
		t.Fatalf("expected pass-through, got %d", len(enriched))
	}
}
