package search

import (
	"sort"
	"strings"

	"shopscout/searchservice/internal/domain"
)

const relevanceTieMargin = 0.02

// relevanceScore rates how well a product name answers the query: name
// similarity dominates, token overlap and listing completeness break it up.
func relevanceScore(query string, product domain.Product) float64 {
	score := 0.6*similarity(query, product.Name) + 0.3*tokenOverlap(query, product.Name)
	if product.URL != "" {
		score += 0.05
	}
	if product.Rated() {
		score += 0.05
	}
	return score
}

// topKScore is the ranking variant used when selecting several products per
// retailer: smaller completeness bonuses spread across more fields.
func topKScore(query string, product domain.Product) float64 {
	score := 0.6*similarity(query, product.Name) + 0.3*tokenOverlap(query, product.Name)
	if product.URL != "" {
		score += 0.03
	}
	if product.Image != "" {
		score += 0.02
	}
	if product.Rated() {
		score += 0.03
	}
	if product.Priced() {
		score += 0.01
	}
	return score
}

// MostRelevant returns the best query match. Candidates scoring within the
// tie margin of the maximum prefer the lowest positive price; everything
// further below the maximum is never picked, no matter how cheap.
func MostRelevant(query string, products []domain.Product) (domain.Product, bool) {
	if len(products) == 0 {
		return domain.Product{}, false
	}

	scores := make([]float64, len(products))
	best, maxScore := products[0], relevanceScore(query, products[0])
	scores[0] = maxScore
	for i, candidate := range products[1:] {
		score := relevanceScore(query, candidate)
		scores[i+1] = score
		if score > maxScore {
			best, maxScore = candidate, score
		}
	}

	for i, candidate := range products {
		if scores[i] < maxScore-relevanceTieMargin {
			continue
		}
		if candidate.Priced() && (!best.Priced() || candidate.Price < best.Price) {
			best = candidate
		}
	}
	return best, true
}

// TopK returns up to k products ranked by relevance. Complete listings
// exhaust first so sparse ones only pad out the tail.
func TopK(query string, products []domain.Product, k int) []domain.Product {
	if k <= 0 || len(products) == 0 {
		return nil
	}

	complete := make([]domain.Product, 0, len(products))
	partial := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.Complete() {
			complete = append(complete, product)
		} else {
			partial = append(partial, product)
		}
	}
	byScore := func(items []domain.Product) {
		sort.SliceStable(items, func(i, j int) bool {
			return topKScore(query, items[i]) > topKScore(query, items[j])
		})
	}
	byScore(complete)
	byScore(partial)

	out := make([]domain.Product, 0, k)
	out = append(out, complete...)
	out = append(out, partial...)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

var accessoryKeywords = []string{
	"case", "cover", "screen guard", "screen protector", "tempered glass",
	"charger", "cable", "adapter", "skin", "sticker", "holder", "mount",
	"stand", "grip", "earphone", "headphone", "earbuds", "power bank",
	"charging pad", "wireless charger", "back cover", "flip cover",
	"protective case", "shell", "bumper case", "pouch", "sleeve",
}

// FilterAccessories drops accessory listings unless the query itself asks
// for one.
func FilterAccessories(query string, products []domain.Product) []domain.Product {
	if isAccessoryText(query) {
		return products
	}
	kept := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if isAccessoryText(product.Name) {
			continue
		}
		kept = append(kept, product)
	}
	return kept
}

func isAccessoryText(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range accessoryKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
