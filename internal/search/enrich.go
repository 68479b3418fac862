package search

import (
	"strings"

	"shopscout/searchservice/internal/domain"
)

const enrichMatchThreshold = 0.45

// Enrich fills missing url, image and rating fields from the best fuzzy name
// match listed by another retailer. A zero rating counts as missing. Prices
// are never copied across sources.
func Enrich(products []domain.Product) []domain.Product {
	if len(products) < 2 {
		return products
	}
	out := make([]domain.Product, len(products))
	copy(out, products)

	for i := range out {
		if out[i].URL != "" && out[i].Image != "" && out[i].Rated() && *out[i].Rating > 0 {
			continue
		}
		match, ok := bestMatch(out[i], products)
		if !ok {
			continue
		}
		if out[i].URL == "" {
			out[i].URL = match.URL
		}
		if out[i].Image == "" {
			out[i].Image = match.Image
		}
		if out[i].Rating == nil || *out[i].Rating == 0 {
			if match.Rating != nil {
				value := *match.Rating
				out[i].Rating = &value
			}
		}
	}
	return out
}

func bestMatch(product domain.Product, reference []domain.Product) (domain.Product, bool) {
	var best domain.Product
	bestScore := 0.0
	found := false
	for _, candidate := range reference {
		if strings.EqualFold(candidate.Retailer, product.Retailer) {
			continue
		}
		score := similarity(product.Name, candidate.Name)
		if score >= enrichMatchThreshold && score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, found
}
