package common

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"shopscout/searchservice/internal/domain"
	"shopscout/searchservice/internal/metrics"
)

// MaxRawItems caps the raw candidates carried into normalization per page.
const MaxRawItems = 24

// Strategy is one stage of an extraction fallback chain.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, query string) ([]domain.Product, error)
}

// Chain runs strategies in order until one yields products. Stage failures
// are logged and swallowed: a retailer with every stage empty returns an
// empty extraction, not an error. Only context cancellation aborts the chain.
type Chain struct {
	retailer   string
	strategies []Strategy
	logger     *slog.Logger
}

func NewChain(retailer string, strategies []Strategy) *Chain {
	return &Chain{
		retailer:   retailer,
		strategies: strategies,
		logger:     slog.Default(),
	}
}

func (c *Chain) Run(ctx context.Context, query string) (domain.Extraction, error) {
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return domain.Extraction{}, err
		}
		products, err := strategy.Run(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Extraction{}, ctx.Err()
			}
			metrics.StageResultsTotal.WithLabelValues(c.retailer, strategy.Name, "error").Inc()
			c.logger.Warn("extraction stage failed",
				slog.String("retailer", c.retailer),
				slog.String("stage", strategy.Name),
				slog.String("query", query),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(products) == 0 {
			metrics.StageResultsTotal.WithLabelValues(c.retailer, strategy.Name, "empty").Inc()
			continue
		}
		metrics.StageResultsTotal.WithLabelValues(c.retailer, strategy.Name, "ok").Inc()
		c.logger.Debug("extraction stage succeeded",
			slog.String("retailer", c.retailer),
			slog.String("stage", strategy.Name),
			slog.Int("count", len(products)),
		)
		return domain.Extraction{Products: products, Stage: strategy.Name}, nil
	}
	return domain.Extraction{Stage: ""}, nil
}

var letterPattern = regexp.MustCompile(`[A-Za-z]`)

// NormalizeRawItems deterministically converts raw extractor items into
// products: prices and ratings are normalized, relative links resolved
// against the retailer base, and junk titles (too short, no letters) dropped.
// At most MaxRawItems inputs are considered.
func NormalizeRawItems(items []domain.RawItem, retailer, baseURL string) []domain.Product {
	if len(items) > MaxRawItems {
		items = items[:MaxRawItems]
	}

	base, _ := url.Parse(baseURL)
	out := make([]domain.Product, 0, len(items))
	for _, item := range items {
		name := strings.Join(strings.Fields(item.Get("title", "product_name", "name")), " ")
		if len(name) < 4 || !letterPattern.MatchString(name) {
			continue
		}

		product := domain.Product{
			Name:     name,
			Price:    NormalizePrice(item.Get("price", "price_text", "amount")),
			Rating:   NormalizeRating(item.Get("rating", "rating_value")),
			URL:      resolveLink(base, item.Get("product_url", "url", "link")),
			Image:    resolveLink(base, item.Get("image", "image_url", "thumbnail")),
			Retailer: retailer,
		}
		product.Discount = synthesizeDiscount(item, product.Price)
		out = append(out, product)
	}
	return out
}

// synthesizeDiscount builds a human-readable discount string from the
// original price and deal label captures, when present.
func synthesizeDiscount(item domain.RawItem, price float64) string {
	parts := make([]string, 0, 3)
	original := item.Get("original_price")
	if original != "" {
		parts = append(parts, "Original: "+original)
	}
	if label := item.Get("deal_label"); label != "" {
		parts = append(parts, label)
	}
	if original != "" && price > 0 {
		if originalValue := NormalizePrice(original); originalValue > price {
			percent := int((originalValue-price)/originalValue*100 + 0.5)
			parts = append(parts, strconv.Itoa(percent)+"% off")
		}
	}
	return strings.Join(parts, " | ")
}

func resolveLink(base *url.URL, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || base == nil {
		return value
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return value
	}
	return base.ResolveReference(parsed).String()
}

// MergeByName fills missing url/image/rating fields on primary products from
// secondary products with the same normalized name, then appends secondary
// products that primary lacks entirely.
func MergeByName(primary, secondary []domain.Product) []domain.Product {
	if len(secondary) == 0 {
		return primary
	}
	index := make(map[string]domain.Product, len(secondary))
	for _, product := range secondary {
		key := strings.ToLower(strings.TrimSpace(product.Name))
		if key == "" {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = product
		}
	}

	seen := make(map[string]struct{}, len(primary))
	out := make([]domain.Product, 0, len(primary))
	for _, product := range primary {
		key := strings.ToLower(strings.TrimSpace(product.Name))
		seen[key] = struct{}{}
		if match, ok := index[key]; ok {
			if product.URL == "" {
				product.URL = match.URL
			}
			if product.Image == "" {
				product.Image = match.Image
			}
			if product.Rating == nil {
				product.Rating = match.Rating
			}
			if product.Price == 0 {
				product.Price = match.Price
			}
		}
		out = append(out, product)
	}
	for _, product := range secondary {
		key := strings.ToLower(strings.TrimSpace(product.Name))
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, product)
	}
	return out
}
