package common

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopscout/searchservice/internal/domain"
)

// Field binds one raw-item key to a CSS selector. Selector may list
// alternatives separated by commas; the first element that yields a value
// wins. An empty Attribute extracts text content.
type Field struct {
	Name      string
	Selector  string
	Attribute string
}

// Schema describes a selector-based extraction pass over a search results
// page: every Container match becomes one raw item.
type Schema struct {
	Container string
	Fields    []Field
	MaxItems  int
}

// Extract runs the schema against an HTML document and returns raw items.
// Items where no field yields a value are dropped.
func (s Schema) Extract(htmlText string) ([]domain.RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, 16)
	doc.Find(s.Container).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		item := make(domain.RawItem, len(s.Fields))
		for _, field := range s.Fields {
			if value := extractField(container, field); value != "" {
				item[field.Name] = value
			}
		}
		if len(item) > 0 {
			items = append(items, item)
		}
		return s.MaxItems <= 0 || len(items) < s.MaxItems
	})
	return items, nil
}

func extractField(container *goquery.Selection, field Field) string {
	for _, selector := range strings.Split(field.Selector, ",") {
		selector = strings.TrimSpace(selector)
		if selector == "" {
			continue
		}
		match := container.Find(selector).First()
		if match.Length() == 0 {
			continue
		}
		var value string
		if field.Attribute != "" {
			value, _ = match.Attr(field.Attribute)
		} else {
			value = match.Text()
		}
		value = strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
		if value != "" {
			return value
		}
	}
	return ""
}
