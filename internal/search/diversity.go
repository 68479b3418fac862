package search

import (
	"strings"

	"shopscout/searchservice/internal/domain"
)

const dominantCap = 2

// Diversify caps the dominant marketplaces at two listings each so smaller
// retailers surface, then backfills from the overflow when the cap leaves
// the result short of the limit.
func Diversify(products []domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		return nil
	}
	if len(products) <= limit {
		return products
	}

	var amazon, flipkart, others []domain.Product
	for _, product := range products {
		switch {
		case isRetailer(product, "amazon"):
			amazon = append(amazon, product)
		case isRetailer(product, "flipkart"):
			flipkart = append(flipkart, product)
		default:
			others = append(others, product)
		}
	}

	out := make([]domain.Product, 0, limit)
	out = append(out, capped(amazon)...)
	out = append(out, capped(flipkart)...)
	out = append(out, others...)

	if len(out) < limit {
		if len(amazon) > dominantCap {
			out = append(out, amazon[dominantCap:]...)
		}
		if len(flipkart) > dominantCap {
			out = append(out, flipkart[dominantCap:]...)
		}
	}

	// Backfill with anything the buckets missed before truncating.
	if len(out) < limit {
		seen := make(map[string]struct{}, len(out))
		for _, product := range out {
			seen[diversityKey(product)] = struct{}{}
		}
		for _, product := range products {
			if _, ok := seen[diversityKey(product)]; ok {
				continue
			}
			out = append(out, product)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func capped(products []domain.Product) []domain.Product {
	if len(products) > dominantCap {
		return products[:dominantCap]
	}
	return products
}

func isRetailer(product domain.Product, name string) bool {
	return strings.Contains(strings.ToLower(product.Retailer), name)
}

func diversityKey(product domain.Product) string {
	if product.URL != "" {
		return product.URL
	}
	return strings.ToLower(product.Name) + "|" + product.Retailer
}
