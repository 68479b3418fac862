package flipkart

import (
	"shopscout/searchservice/internal/providers/common"
)

const (
	defaultEndpoint = "https://www.flipkart.com"
	maxStaticItems  = 12
)

// Config controls the Flipkart search provider.
type Config struct {
	Endpoint   string
	Fetcher    *common.Fetcher
	Renderer   *common.Renderer
	Normalizer common.Normalizer
}

// NewProvider builds the Flipkart extraction chain. Flipkart rotates its
// obfuscated class names between layout generations, so every selector lists
// the known aliases oldest-to-newest.
func NewProvider(cfg Config) *common.PageProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return common.NewPageProvider(common.PageConfig{
		Name:       "Flipkart",
		Endpoint:   endpoint,
		SearchPath: "/search?q=",
		Primary:    primarySchema,
		Variants:   variantSchemas,
		Fetcher:    cfg.Fetcher,
		Renderer:   cfg.Renderer,
		Normalizer: cfg.Normalizer,
	})
}

var primarySchema = common.Schema{
	Container: "div._1AtVbE div._2kHMtA, div._13oc-S, div._1AtVbE ._4ddWXP",
	MaxItems:  common.MaxRawItems,
	Fields: []common.Field{
		{Name: "title", Selector: "div._4rR01T, a.s1Q9rs, a.IRpwTa, div.KzDlHZ, div._2B099V"},
		{Name: "price", Selector: "div._30jeq3, div._25b18c, div.Nx9bqj, div._1vC4OE, span._2b3S0g"},
		{Name: "original_price", Selector: "div._3I9_wc, div.yRaY8j"},
		{Name: "deal_label", Selector: "div._3Ay6Sb span, div.UkUFwK span"},
		{Name: "rating", Selector: "div._3LWZlK, div._2b4-LK, div.XQDdHH"},
		{Name: "product_url", Selector: "a.CGtC98, a._1fQZEK, a.s1Q9rs, a.IRpwTa, a", Attribute: "href"},
		{Name: "image", Selector: "img.DByuf4, img._396cs4, img", Attribute: "src"},
	},
}

var variantSchemas = []common.Schema{
	{
		Container: "div._1AtVbE div._13oc-S",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
	{
		Container: "div._1AtVbE ._4ddWXP",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
	{
		Container: "div._1AtVbE div._2kHMtA",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
	{
		Container: "div._13oc-S",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
	{
		Container: "div.tUxRFH",
		MaxItems:  maxStaticItems,
		Fields:    staticFields,
	},
}

var staticFields = []common.Field{
	{Name: "title", Selector: "div._4rR01T, a.s1Q9rs, a.IRpwTa, div.KzDlHZ, div._2B099V"},
	{Name: "price", Selector: "div._30jeq3, div._25b18c, div.Nx9bqj, div._1vC4OE, span._2b3S0g"},
	{Name: "rating", Selector: "div._3LWZlK, div._2b4-LK, div.XQDdHH"},
	{Name: "product_url", Selector: "a.CGtC98, a._1fQZEK, a.s1Q9rs, a.IRpwTa, a", Attribute: "href"},
	{Name: "image", Selector: "img.DByuf4, img._396cs4, img", Attribute: "src"},
}
