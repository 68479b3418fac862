package search

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"shopscout/searchservice/internal/domain"
)

const (
	priceWeight  = 0.7
	ratingWeight = 0.3

	labelExcellent = "Excellent Deal! Buy Now"
	labelGood      = "Good Deal"
	labelFair      = "Fair Price"
	labelWait      = "Consider Waiting"

	strictMinRating = 3.5
)

// ScoreLenient scores every product against the group's price range: the
// cheapest priced product gets a full price score, unpriced ones get zero,
// and a missing rating counts as neutral. Scores land in [0, 1].
func ScoreLenient(products []domain.Product) []domain.Product {
	if len(products) == 0 {
		return nil
	}
	minPrice, maxPrice := priceRange(products)

	out := make([]domain.Product, len(products))
	copy(out, products)
	for i := range out {
		priceScore := 0.0
		if out[i].Priced() {
			if maxPrice == minPrice {
				priceScore = 1.0
			} else {
				priceScore = (maxPrice - out[i].Price) / (maxPrice - minPrice)
			}
		}
		ratingScore := 0.5
		if out[i].Rated() {
			ratingScore = *out[i].Rating / 5
		}
		score := round4(priceWeight*priceScore + ratingWeight*ratingScore)
		out[i].Score = &score
		out[i].Label = lenientLabel(score)
	}
	return out
}

func lenientLabel(score float64) string {
	switch {
	case score >= 0.8:
		return labelExcellent
	case score >= 0.6:
		return labelGood
	case score >= 0.4:
		return labelFair
	default:
		return labelWait
	}
}

// ScoreStrict keeps only well-rated priced products, discards price outliers
// by the interquartile rule, and scores what survives against the minimum
// surviving price. It returns nil when no product qualifies.
func ScoreStrict(products []domain.Product) []domain.Product {
	rated := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.Priced() && product.Rated() && *product.Rating > strictMinRating {
			rated = append(rated, product)
		}
	}
	if len(rated) == 0 {
		return nil
	}

	kept := dropPriceOutliers(rated)
	if len(kept) == 0 {
		kept = rated
	}

	minPrice := kept[0].Price
	for _, product := range kept[1:] {
		if product.Price < minPrice {
			minPrice = product.Price
		}
	}

	out := make([]domain.Product, len(kept))
	copy(out, kept)
	for i := range out {
		priceScore := minPrice / out[i].Price
		ratingScore := *out[i].Rating / 5
		score := round4(priceWeight*priceScore + ratingWeight*ratingScore)
		out[i].Score = &score
		out[i].Label = strictLabel(score)
	}
	return out
}

func strictLabel(score float64) string {
	switch {
	case score >= 0.8:
		return labelExcellent
	case score >= 0.6:
		return labelGood
	default:
		return labelWait
	}
}

// dropPriceOutliers applies the 1.5×IQR rule over the sorted prices. The low
// bound never goes below zero.
func dropPriceOutliers(products []domain.Product) []domain.Product {
	prices := make([]float64, len(products))
	for i, product := range products {
		prices[i] = product.Price
	}
	sort.Float64s(prices)

	n := len(prices)
	q1 := prices[n/4]
	q3 := prices[3*n/4]
	iqr := q3 - q1
	low := math.Max(0, q1-1.5*iqr)
	high := q3 + 1.5*iqr

	kept := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.Price >= low && product.Price <= high {
			kept = append(kept, product)
		}
	}
	return kept
}

// PickBest selects the single best deal: strict scoring when any product
// qualifies, lenient scoring otherwise. Ties go to the lower price.
func PickBest(products []domain.Product) (domain.Product, bool) {
	scored := ScoreStrict(products)
	if len(scored) == 0 {
		priced := make([]domain.Product, 0, len(products))
		for _, product := range products {
			if product.Priced() {
				priced = append(priced, product)
			}
		}
		scored = ScoreLenient(priced)
	}
	if len(scored) == 0 {
		return domain.Product{}, false
	}

	best := scored[0]
	for _, candidate := range scored[1:] {
		if candidate.Score == nil {
			continue
		}
		if best.Score == nil || *candidate.Score > *best.Score ||
			(*candidate.Score == *best.Score && candidate.Price < best.Price) {
			best = candidate
		}
	}
	return best, true
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}

func priceRange(products []domain.Product) (float64, float64) {
	minPrice, maxPrice := 0.0, 0.0
	seen := false
	for _, product := range products {
		if !product.Priced() {
			continue
		}
		if !seen {
			minPrice, maxPrice = product.Price, product.Price
			seen = true
			continue
		}
		if product.Price < minPrice {
			minPrice = product.Price
		}
		if product.Price > maxPrice {
			maxPrice = product.Price
		}
	}
	return minPrice, maxPrice
}

var inrPrinter = message.NewPrinter(language.English)

// Summary builds the one-line recommendation attached to scrape-mode
// responses.
func Summary(best domain.Product) string {
	advice := "wait"
	if best.Score != nil && *best.Score >= 0.6 {
		advice = "buy"
	}
	return fmt.Sprintf(
		"Best Deal: %s | Price: %s | Rating: %s | Retailer: %s. Advice: %s. Suggestion: Based on 70%% price and 30%% rating.",
		best.Name, formatINR(best.Price), formatRating(best.Rating), best.Retailer, advice,
	)
}

// ShoppingSummary builds the multi-line market overview used by the shopping
// mode.
func ShoppingSummary(products []domain.Product, best domain.Product) string {
	minPrice, maxPrice := priceRange(products)
	platforms := make([]string, 0, 8)
	seen := make(map[string]struct{}, 8)
	for _, product := range products {
		key := strings.ToLower(product.Retailer)
		if _, ok := seen[key]; ok || product.Retailer == "" {
			continue
		}
		seen[key] = struct{}{}
		platforms = append(platforms, product.Retailer)
	}
	top := platforms
	if len(top) > 3 {
		top = top[:3]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **Best Deal Found**: %s from %s\n", best.Name, best.Retailer)
	fmt.Fprintf(&b, "💰 **Price**: %s\n", formatINR(best.Price))
	fmt.Fprintf(&b, "⭐ **Rating**: %s/5\n", formatRating(best.Rating))
	fmt.Fprintf(&b, "🏆 **Recommendation**: %s\n\n", best.Label)
	b.WriteString("📊 **Market Overview**:\n")
	fmt.Fprintf(&b, "• Found %d products across %d platforms\n", len(products), len(platforms))
	fmt.Fprintf(&b, "• Price range: %s - %s\n", formatINR(minPrice), formatINR(maxPrice))
	fmt.Fprintf(&b, "• Top platforms: %s\n\n", strings.Join(top, ", "))
	b.WriteString("💡 **Shopping Tip**: Compare features and delivery options before making your final decision!")
	return b.String()
}

func formatINR(price float64) string {
	return inrPrinter.Sprintf("₹%.0f", price)
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*rating, 'f', -1, 64)
}
