package common

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopscout/searchservice/internal/domain"
)

// ExtractJSONLD parses embedded JSON-LD blocks for Product and ItemList
// entries. It is the last chain stage: by the time it runs, every
// selector-based pass has come up empty.
func ExtractJSONLD(htmlText, retailer string) ([]domain.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		text := strings.TrimSpace(script.Text())
		if text == "" {
			return
		}
		scriptType := strings.ToLower(script.AttrOr("type", ""))
		if !strings.Contains(scriptType, "application/ld+json") && !looksLikeJSONLD(text) {
			return
		}

		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return
		}
		for _, entry := range flattenJSONLD(payload) {
			if product, ok := productFromJSONLD(entry, retailer); ok {
				products = append(products, product)
			}
		}
	})
	return products, nil
}

func looksLikeJSONLD(text string) bool {
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return false
	}
	return strings.Contains(text, "@context") ||
		strings.Contains(text, `"@type"`) ||
		strings.Contains(text, "ItemList") ||
		strings.Contains(text, "Product")
}

// flattenJSONLD unwraps arrays, @graph containers and ItemList elements into
// a flat list of candidate objects.
func flattenJSONLD(payload any) []map[string]any {
	var out []map[string]any
	switch value := payload.(type) {
	case []any:
		for _, item := range value {
			out = append(out, flattenJSONLD(item)...)
		}
	case map[string]any:
		if graph, ok := value["@graph"].([]any); ok {
			for _, item := range graph {
				out = append(out, flattenJSONLD(item)...)
			}
			return out
		}
		if isJSONLDType(value, "itemlist") {
			elements, _ := value["itemListElement"].([]any)
			for _, element := range elements {
				out = append(out, flattenJSONLD(element)...)
			}
			return out
		}
		if isJSONLDType(value, "listitem") {
			if item, ok := value["item"].(map[string]any); ok {
				// Carry the wrapper's name/url down when the item lacks them.
				if _, exists := item["name"]; !exists {
					item["name"] = value["name"]
				}
				if _, exists := item["url"]; !exists {
					item["url"] = value["url"]
				}
				out = append(out, item)
				return out
			}
		}
		out = append(out, value)
	}
	return out
}

func isJSONLDType(entry map[string]any, want string) bool {
	raw, ok := entry["@type"]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(fmt.Sprintf("%v", raw)), want)
}

func productFromJSONLD(entry map[string]any, retailer string) (domain.Product, bool) {
	name := stringValue(entry["name"])
	if name == "" {
		return domain.Product{}, false
	}

	product := domain.Product{
		Name:     name,
		URL:      stringValue(entry["url"]),
		Image:    firstString(entry["image"]),
		Retailer: retailer,
	}

	offers := entry["offers"]
	if list, ok := offers.([]any); ok && len(list) > 0 {
		offers = list[0]
	}
	if offer, ok := offers.(map[string]any); ok {
		raw := offer["price"]
		if raw == nil {
			raw = offer["lowPrice"]
		}
		product.Price = NormalizePrice(stringValue(raw))
	}

	if aggregate, ok := entry["aggregateRating"].(map[string]any); ok {
		product.Rating = NormalizeRating(stringValue(aggregate["ratingValue"]))
	}
	return product, true
}

func stringValue(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}

func firstString(raw any) string {
	if list, ok := raw.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		return stringValue(list[0])
	}
	return stringValue(raw)
}
