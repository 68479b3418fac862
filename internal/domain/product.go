package domain

// Product is the single normalized listing entity. Extractors produce raw
// field maps; everything past the provider boundary is a Product.
//
// Price 0.0 means "unknown" — such products are excluded from ranking and
// price statistics but may still be enriched or returned.
type Product struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Rating   *float64 `json:"rating,omitempty"`
	URL      string   `json:"url,omitempty"`
	Image    string   `json:"image,omitempty"`
	Retailer string   `json:"retailer"`
	Score    *float64 `json:"score,omitempty"`
	Label    string   `json:"label,omitempty"`
	Discount string   `json:"discount,omitempty"`
}

// RawItem is an untyped field-name→value record emitted by an extractor
// before normalization. It never crosses into scoring or selection logic.
type RawItem map[string]string

// Get returns the first non-empty value among the named keys.
func (r RawItem) Get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r[key]; ok && value != "" {
			return value
		}
	}
	return ""
}

// PlatformGroup holds one retailer's products sorted score-descending,
// with price statistics over positive prices only.
type PlatformGroup struct {
	Platform  string    `json:"platform"`
	Products  []Product `json:"products"`
	PriceLow  *float64  `json:"price_low,omitempty"`
	PriceAvg  *float64  `json:"price_avg,omitempty"`
	PriceHigh *float64  `json:"price_high,omitempty"`
}

// RetailerStatus records the outcome of one retailer's extraction chain.
// A retailer yielding zero products is a valid outcome, not an error.
type RetailerStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`
}

// SearchResult is the aggregated response: platform groups ordered by
// ascending PriceLow (groups without priced items last), global price
// statistics, and an optional recommendation summary.
type SearchResult struct {
	Query          string           `json:"query"`
	Platforms      []PlatformGroup  `json:"platforms"`
	PriceLow       *float64         `json:"price_low,omitempty"`
	PriceAvg       *float64         `json:"price_avg,omitempty"`
	PriceHigh      *float64         `json:"price_high,omitempty"`
	Recommendation string           `json:"recommendation,omitempty"`
	Retailers      []RetailerStatus `json:"retailers,omitempty"`
	ElapsedMS      int64            `json:"elapsed_ms"`
}

// Extraction is the outcome of one retailer's fallback chain: the products it
// yielded and the name of the stage that produced them.
type Extraction struct {
	Products []Product
	Stage    string
}

// SearchRequest carries the inbound query parameters.
type SearchRequest struct {
	Query              string
	Limit              int
	NoCache            bool
	ExcludeAccessories bool
}

// Rated reports whether the product carries a rating.
func (p Product) Rated() bool {
	return p.Rating != nil
}

// Priced reports whether the product has a usable (positive) price.
func (p Product) Priced() bool {
	return p.Price > 0
}

// Complete reports whether every optional listing field is populated.
// Fully-populated products are preferred by top-k selection.
func (p Product) Complete() bool {
	return p.Name != "" && p.Priced() && p.Rated() && p.URL != "" && p.Image != ""
}

// Float returns a pointer to v, for optional response fields.
func Float(v float64) *float64 {
	return &v
}
