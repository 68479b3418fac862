package common

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// USDToINR converts dollar-marked prices when no rupee marker is present.
const USDToINR = 83.0

var (
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	numberPattern = regexp.MustCompile(`(\d+\.?\d*)`)
	nonPricePart  = regexp.MustCompile(`[^0-9.,]`)
)

func CleanHTMLText(raw string) string {
	value := strings.TrimSpace(raw)
	value = html.UnescapeString(value)
	value = tagPattern.ReplaceAllString(value, " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

// NormalizePrice converts a price-like string into a float64 in INR.
//
// Ranges ("₹12,999 - ₹15,999") resolve to the lower bound. A "$" marker with
// no local-currency marker triggers USD→INR conversion. Any parse failure
// returns 0.0, which callers treat as "price unknown", never as an error.
func NormalizePrice(raw string) float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, " ", " ")

	usd := strings.Contains(value, "$") && !strings.Contains(value, "₹") &&
		!strings.Contains(strings.ToLower(value), "rs")

	if idx := strings.Index(value, "-"); idx > 0 {
		value = strings.TrimSpace(value[:idx])
	}

	value = nonPricePart.ReplaceAllString(value, "")
	// More than one comma means grouping separators, not a decimal comma.
	if strings.Count(value, ",") > 1 {
		value = strings.ReplaceAll(value, ",", "")
	}
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return 0
	}

	match := numberPattern.FindString(value)
	if match == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	if usd {
		return parsed * USDToINR
	}
	return parsed
}

// NormalizeRating extracts the first decimal number from a rating string
// ("4.3 out of 5 stars" → 4.3). Returns nil when no digits are found.
// No clamp to [0,5] is applied.
func NormalizeRating(raw string) *float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	match := numberPattern.FindString(value)
	if match == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
