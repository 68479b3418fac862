package amazon

import (
	"shopscout/searchservice/internal/providers/common"
)

const (
	defaultEndpoint = "https://www.amazon.in"
	maxStaticItems  = 16
)

// Config controls the Amazon search provider.
type Config struct {
	Endpoint   string
	Fetcher    *common.Fetcher
	Renderer   *common.Renderer
	Normalizer common.Normalizer
}

// NewProvider builds the Amazon extraction chain. Selector sets follow the
// result-grid markup amazon.in currently serves; the variants cover the
// older layouts it still falls back to.
func NewProvider(cfg Config) *common.PageProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return common.NewPageProvider(common.PageConfig{
		Name:       "Amazon",
		Endpoint:   endpoint,
		SearchPath: "/s?k=",
		Primary:    primarySchema,
		Variants:   variantSchemas,
		Fetcher:    cfg.Fetcher,
		Renderer:   cfg.Renderer,
		Normalizer: cfg.Normalizer,
	})
}

var primarySchema = common.Schema{
	Container: "div.s-result-item[data-asin]",
	MaxItems:  common.MaxRawItems,
	Fields: []common.Field{
		{Name: "title", Selector: "h2 a span, span.a-size-medium, h2 span"},
		{Name: "price", Selector: "span.a-price span.a-offscreen, span.a-price-whole"},
		{Name: "original_price", Selector: "span.a-text-price span.a-offscreen"},
		{Name: "deal_label", Selector: "span.savingsPercentage, span.a-badge-text"},
		{Name: "rating", Selector: "span.a-icon-alt"},
		{Name: "product_url", Selector: "h2 a, a.a-link-normal.s-no-outline, a.a-link-normal", Attribute: "href"},
		{Name: "image", Selector: "img.s-image, img[data-image-latency], img", Attribute: "src"},
	},
}

var variantSchemas = []common.Schema{
	{
		Container: "div.s-main-slot > div[data-asin][data-component-type=s-search-result]",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
	{
		Container: "div.s-result-item[data-asin]",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
	{
		Container: "div.s-main-slot div[data-asin]",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
}

var staticFields = []common.Field{
	{Name: "title", Selector: "h2 a span, span.a-size-medium, h2 span"},
	{Name: "price", Selector: "span.a-price span.a-offscreen, span.a-price-whole"},
	{Name: "rating", Selector: "span.a-icon-alt"},
	{Name: "product_url", Selector: "h2 a, a.a-link-normal.s-no-outline, a.a-link-normal", Attribute: "href"},
	{Name: "image", Selector: "img.s-image, img[data-image-latency], img", Attribute: "src"},
}
