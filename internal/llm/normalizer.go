package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"shopscout/searchservice/internal/domain"
	"shopscout/searchservice/internal/providers/common"
)

const (
	maxPromptChars = 6000
	maxProducts    = 20
)

// Normalizer asks the model to pull structured listings out of page text
// when every selector-based pass has failed. Responses are cached on disk.
type Normalizer struct {
	client *Client
	cache  *FileCache
	logger *slog.Logger
}

func NewNormalizer(client *Client, cache *FileCache) *Normalizer {
	return &Normalizer{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
}

// Extract implements common.Normalizer.
func (n *Normalizer) Extract(ctx context.Context, query, pageHTML, retailer string) ([]domain.Product, error) {
	if n == nil || n.client == nil || !n.client.Enabled() {
		return nil, nil
	}

	text := common.CleanHTMLText(pageHTML)
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	prompt := buildPrompt(query, retailer, text)

	response, cached := n.cache.Get(prompt)
	if !cached {
		var err error
		response, err = n.client.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		n.cache.Put(prompt, response)
	}

	products := parseProducts(response, retailer)
	n.logger.Debug("llm normalization finished",
		slog.String("retailer", retailer),
		slog.Bool("cached", cached),
		slog.Int("count", len(products)),
	)
	return products, nil
}

func buildPrompt(query, retailer, text string) string {
	return fmt.Sprintf(
		"Extract up to %d product listings matching the shopping query %q from this %s search results page text. "+
			"Respond with a JSON array where each object has the keys "+
			"product_name, price, rating, product_url, image_url, retailer. "+
			"Use null for unknown values. Return only the JSON array.\n\nPage text:\n%s",
		maxProducts, query, retailer, text,
	)
}

// parseProducts tolerates code fences around the array and mixed
// string/number price and rating values.
func parseProducts(response, retailer string) []domain.Product {
	cleaned := stripCodeFences(response)

	var entries []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil
	}

	products := make([]domain.Product, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(asString(entry["product_name"]))
		if len(name) < 4 {
			continue
		}
		source := strings.TrimSpace(asString(entry["retailer"]))
		if source == "" {
			source = retailer
		}
		products = append(products, domain.Product{
			Name:     name,
			Price:    common.NormalizePrice(asString(entry["price"])),
			Rating:   common.NormalizeRating(asString(entry["rating"])),
			URL:      strings.TrimSpace(asString(entry["product_url"])),
			Image:    strings.TrimSpace(asString(entry["image_url"])),
			Retailer: source,
		})
		if len(products) >= maxProducts {
			break
		}
	}
	return products
}

func stripCodeFences(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

func asString(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
