package common

import (
	"context"
	"net/url"
	"strings"

	"shopscout/searchservice/internal/domain"
)

// Normalizer turns page content into products when selector extraction
// comes up empty. The LLM-backed implementation lives in internal/llm.
type Normalizer interface {
	Extract(ctx context.Context, query, pageHTML, retailer string) ([]domain.Product, error)
}

// PageConfig describes one retailer's search page and its extraction chain.
type PageConfig struct {
	Name       string
	Endpoint   string
	SearchPath string
	Primary    Schema
	Variants   []Schema
	Fetcher    *Fetcher
	Renderer   *Renderer
	Normalizer Normalizer
}

// PageProvider runs the full fallback chain against a retailer search page:
// schema extraction, LLM normalization, static selector variants, rendered
// selector variants, and finally JSON-LD.
type PageProvider struct {
	cfg PageConfig
}

func NewPageProvider(cfg PageConfig) *PageProvider {
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewFetcher(nil)
	}
	cfg.Endpoint = strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/")
	return &PageProvider{cfg: cfg}
}

func (p *PageProvider) Name() string {
	return p.cfg.Name
}

func (p *PageProvider) Search(ctx context.Context, query string) (domain.Extraction, error) {
	run := &pageRun{
		cfg:       &p.cfg,
		searchURL: p.cfg.Endpoint + p.cfg.SearchPath + url.QueryEscape(strings.TrimSpace(query)),
	}
	chain := NewChain(p.cfg.Name, []Strategy{
		{Name: "schema", Run: run.runSchema},
		{Name: "llm", Run: run.runLLM},
		{Name: "static", Run: run.runStatic},
		{Name: "render", Run: run.runRender},
		{Name: "jsonld", Run: run.runJSONLD},
	})
	return chain.Run(ctx, query)
}

// pageRun holds per-search state so later stages can reuse the last page
// retrieved by an earlier one.
type pageRun struct {
	cfg       *PageConfig
	searchURL string
	lastHTML  string
}

func (r *pageRun) runSchema(ctx context.Context, _ string) ([]domain.Product, error) {
	// When a renderer is configured, a plain static fetch runs concurrently
	// so its parse can fill fields the rendered markup hides.
	var staticCh chan []domain.Product
	if r.cfg.Renderer.Enabled() {
		staticCh = make(chan []domain.Product, 1)
		go func() {
			html, err := r.cfg.Fetcher.Get(ctx, r.searchURL)
			if err != nil {
				staticCh <- nil
				return
			}
			staticCh <- r.parseVariants(html)
		}()
	}

	html, err := r.fetchPage(ctx)
	if err != nil {
		return nil, err
	}
	r.lastHTML = html

	items, err := r.cfg.Primary.Extract(html)
	if err != nil {
		return nil, err
	}
	products := NormalizeRawItems(items, r.cfg.Name, r.cfg.Endpoint)
	if len(products) == 0 {
		return nil, nil
	}

	if staticCh != nil {
		select {
		case local := <-staticCh:
			products = MergeByName(products, local)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		products = MergeByName(products, r.parseVariants(html))
	}
	if len(products) > MaxRawItems {
		products = products[:MaxRawItems]
	}
	return products, nil
}

func (r *pageRun) runLLM(ctx context.Context, query string) ([]domain.Product, error) {
	if r.cfg.Normalizer == nil {
		return nil, nil
	}
	if r.lastHTML == "" {
		html, err := r.cfg.Fetcher.Get(ctx, r.searchURL)
		if err != nil {
			return nil, err
		}
		r.lastHTML = html
	}
	return r.cfg.Normalizer.Extract(ctx, query, r.lastHTML, r.cfg.Name)
}

func (r *pageRun) runStatic(ctx context.Context, _ string) ([]domain.Product, error) {
	html, err := r.cfg.Fetcher.Get(ctx, r.searchURL)
	if err != nil {
		return nil, err
	}
	r.lastHTML = html
	return r.parseVariants(html), nil
}

func (r *pageRun) runRender(ctx context.Context, _ string) ([]domain.Product, error) {
	if !r.cfg.Renderer.Enabled() {
		return nil, nil
	}
	html, err := r.cfg.Renderer.Fetch(ctx, r.searchURL)
	if err != nil {
		return nil, err
	}
	r.lastHTML = html
	return r.parseVariants(html), nil
}

func (r *pageRun) runJSONLD(_ context.Context, _ string) ([]domain.Product, error) {
	if r.lastHTML == "" {
		return nil, nil
	}
	return ExtractJSONLD(r.lastHTML, r.cfg.Name)
}

func (r *pageRun) fetchPage(ctx context.Context) (string, error) {
	if r.cfg.Renderer.Enabled() {
		return r.cfg.Renderer.Fetch(ctx, r.searchURL)
	}
	return r.cfg.Fetcher.Get(ctx, r.searchURL)
}

func (r *pageRun) parseVariants(html string) []domain.Product {
	for _, schema := range r.cfg.Variants {
		items, err := schema.Extract(html)
		if err != nil || len(items) == 0 {
			continue
		}
		if products := NormalizeRawItems(items, r.cfg.Name, r.cfg.Endpoint); len(products) > 0 {
			return products
		}
	}
	return nil
}
