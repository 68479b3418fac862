package shopsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"shopscout/searchservice/internal/domain"
	"shopscout/searchservice/internal/providers/common"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	redisCacheKey  = "shopscout:shop:"
	maxResultNum   = 40
)

// Client queries a structured shopping-search API for pre-normalized
// listings across retailers. It replaces scraping when an API key is set.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

type Config struct {
	APIKey   string
	BaseURL  string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		redis:    cfg.Redis,
		cacheTTL: cacheTTL,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type shoppingItem struct {
	Title               string   `json:"title"`
	Price               string   `json:"price"`
	ExtractedPrice      float64  `json:"extracted_price"`
	OldPrice            string   `json:"old_price"`
	ExtractedOldPrice   float64  `json:"extracted_old_price"`
	Rating              *float64 `json:"rating"`
	Link                string   `json:"link"`
	ProductLink         string   `json:"product_link"`
	TrackingLink        string   `json:"tracking_link"`
	Thumbnail           string   `json:"thumbnail"`
	SerpapiThumbnail    string   `json:"serpapi_thumbnail"`
	Source              string   `json:"source"`
	SecondHandCondition string   `json:"second_hand_condition"`
	Installment         *struct {
		Months       json.Number `json:"months"`
		CostPerMonth json.Number `json:"cost_per_month"`
	} `json:"installment"`
}

type shoppingResponse struct {
	InlineShoppingResults []shoppingItem `json:"inline_shopping_results"`
	ShoppingResults       []shoppingItem `json:"shopping_results"`
}

var inrPrinter = message.NewPrinter(language.English)

// Search returns up to limit*5 (capped at 40) mapped listings for the query.
// Inline results are preferred over the organic shopping grid; entries
// without a usable price are dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	num := limit * 5
	if num > maxResultNum {
		num = maxResultNum
	}

	cacheKey := fmt.Sprintf("%s%s:%d", redisCacheKey, strings.ToLower(strings.TrimSpace(query)), num)
	if c.redis != nil {
		data, err := c.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var products []domain.Product
			if json.Unmarshal(data, &products) == nil {
				return products, nil
			}
		}
	}

	params := url.Values{
		"engine":        {"google_shopping"},
		"q":             {strings.TrimSpace(query)},
		"api_key":       {c.apiKey},
		"num":           {strconv.Itoa(num)},
		"hl":            {"en"},
		"gl":            {"in"},
		"google_domain": {"google.co.in"},
		"location":      {"India"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("shopping API HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}

	var response shoppingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	items := response.InlineShoppingResults
	if len(items) == 0 {
		items = response.ShoppingResults
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if product, ok := mapItem(item); ok {
			products = append(products, product)
		}
	}

	if c.redis != nil && len(products) > 0 {
		if data, err := json.Marshal(products); err == nil {
			_ = c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err()
		}
	}
	return products, nil
}

func mapItem(item shoppingItem) (domain.Product, bool) {
	name := strings.TrimSpace(item.Title)
	if name == "" {
		return domain.Product{}, false
	}
	price := item.ExtractedPrice
	if price <= 0 {
		price = common.NormalizePrice(item.Price)
	}
	if price <= 0 {
		return domain.Product{}, false
	}
	if item.SecondHandCondition != "" {
		name += " (" + titleWords(item.SecondHandCondition) + ")"
	}

	link := item.TrackingLink
	if link == "" {
		link = item.Link
	}
	if link == "" {
		link = item.ProductLink
	}
	image := item.Thumbnail
	if image == "" {
		image = item.SerpapiThumbnail
	}
	retailer := common.CleanRetailerName(item.Source)
	if retailer == "" {
		retailer = common.ResolveRetailer(link)
	}

	product := domain.Product{
		Name:     name,
		Price:    price,
		Rating:   item.Rating,
		URL:      link,
		Image:    image,
		Retailer: retailer,
		Discount: buildDiscount(item, price),
	}
	return product, true
}

// buildDiscount combines the old-price markdown and installment plan into
// one display string.
func buildDiscount(item shoppingItem, price float64) string {
	var parts []string
	old := item.ExtractedOldPrice
	if old <= 0 {
		old = common.NormalizePrice(item.OldPrice)
	}
	if old > price {
		percent := int((old-price)/old*100 + 0.5)
		parts = append(parts, inrPrinter.Sprintf("%d%% off (was ₹%.0f)", percent, old))
	}
	if inst := item.Installment; inst != nil && inst.CostPerMonth != "" && inst.Months != "" {
		parts = append(parts, fmt.Sprintf("%s for %s months", inst.CostPerMonth, inst.Months))
	}
	return strings.Join(parts, " | ")
}

func titleWords(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
