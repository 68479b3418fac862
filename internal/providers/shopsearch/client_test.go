package shopsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const inlineResponse = `{
  "inline_shopping_results": [
    {
      "title": "Apple iPhone 16 128GB Black",
      "extracted_price": 79999,
      "old_price": "₹89,999",
      "extracted_old_price": 89999,
      "rating": 4.6,
      "tracking_link": "https://track.example/1",
      "link": "https://www.example.in/1",
      "thumbnail": "https://img.example/1.jpg",
      "source": "Amazon.in",
      "installment": {"months": 12, "cost_per_month": 6250}
    },
    {
      "title": "iPhone 16 Renewed",
      "extracted_price": 64999,
      "product_link": "https://www.cashify.in/phone",
      "second_hand_condition": "refurbished"
    },
    {"title": "Price on request", "price": "Call for price"},
    {"extracted_price": 100}
  ]
}`

func TestClientSearch(t *testing.T) {
	var gotParams map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = map[string]string{}
		for key := range r.URL.Query() {
			gotParams[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(inlineResponse))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Client: server.Client()})
	if !client.Enabled() {
		t.Fatal("client with key should be enabled")
	}

	products, err := client.Search(context.Background(), "iphone 16", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	if gotParams["engine"] != "google_shopping" {
		t.Errorf("engine = %q", gotParams["engine"])
	}
	if gotParams["num"] != "25" {
		t.Errorf("num = %q", gotParams["num"])
	}
	if gotParams["gl"] != "in" || gotParams["google_domain"] != "google.co.in" || gotParams["location"] != "India" {
		t.Errorf("locale params = %v", gotParams)
	}

	// Unpriced and untitled entries are dropped.
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	first := products[0]
	if first.Name != "Apple iPhone 16 128GB Black" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Price != 79999 {
		t.Errorf("price = %v", first.Price)
	}
	if first.Rating == nil || *first.Rating != 4.6 {
		t.Errorf("rating = %v", first.Rating)
	}
	if first.URL != "https://track.example/1" {
		t.Errorf("tracking link should win: %q", first.URL)
	}
	if first.Retailer != "Amazon" {
		t.Errorf("retailer = %q", first.Retailer)
	}
	if !strings.Contains(first.Discount, "11% off (was ₹89,999)") {
		t.Errorf("discount = %q", first.Discount)
	}
	if !strings.Contains(first.Discount, "6250 for 12 months") {
		t.Errorf("discount = %q", first.Discount)
	}

	second := products[1]
	if second.Name != "iPhone 16 Renewed (Refurbished)" {
		t.Errorf("second-hand name = %q", second.Name)
	}
	if second.URL != "https://www.cashify.in/phone" {
		t.Errorf("product_link fallback: %q", second.URL)
	}
}

func TestClientSearchOrganicFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
		  "inline_shopping_results": [],
		  "shopping_results": [{"title": "Galaxy S25 256GB", "extracted_price": 74999, "link": "https://www.flipkart.com/s25"}]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Client: server.Client()})
	products, err := client.Search(context.Background(), "galaxy s25", 1)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Retailer != "Flipkart" {
		t.Errorf("retailer resolved from link = %q", products[0].Retailer)
	}
}

func TestClientSearchNumCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("num"); got != "40" {
			t.Errorf("num = %q, want 40", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Client: server.Client()})
	if _, err := client.Search(context.Background(), "iphone", 20); err != nil {
		t.Fatalf("search error: %v", err)
	}
}

func TestClientDisabledWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("disabled client must not call the API")
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Client: server.Client()})
	if client.Enabled() {
		t.Fatal("client without key should be disabled")
	}
	products, err := client.Search(context.Background(), "iphone", 5)
	if err != nil || products != nil {
		t.Fatalf("expected nil, nil; got %v, %v", products, err)
	}
}

func TestClientSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Client: server.Client()})
	if _, err := client.Search(context.Background(), "iphone", 5); err == nil {
		t.Fatal("expected error on HTTP 429")
	}
}
