package common

import (
	"net/url"
	"strings"
)

// retailerKeywords maps link substrings to canonical retailer names.
// Order matters: the first match wins, so "amazon" beats a later host check.
var retailerKeywords = []struct {
	Key  string
	Name string
}{
	{"amazon", "Amazon"},
	{"flipkart", "Flipkart"},
	{"croma", "Croma"},
	{"reliance", "Reliance Digital"},
	{"myntra", "Myntra"},
	{"ajio", "Ajio"},
	{"snapdeal", "Snapdeal"},
	{"paytm", "Paytm Mall"},
	{"jiomart", "JioMart"},
	{"jio.com", "JioMart"},
	{"bigbasket", "BigBasket"},
	{"93mobiles", "93mobiles"},
	{"nykaa", "Nykaa"},
	{"tatacliq", "Tata CLiQ"},
	{"shopclues", "ShopClues"},
	{"limeroad", "LimeRoad"},
	{"meesho", "Meesho"},
	{"pepperfry", "Pepperfry"},
}

var retailerKeywordsTail = []struct {
	Key  string
	Name string
}{
	{"fabindia", "Fabindia"},
	{"koovs", "Koovs"},
}

// ResolveRetailer maps a product link to a canonical retailer name. Unknown
// hosts fall back to the title-cased first label of the domain; unparseable
// links resolve to "Unknown".
func ResolveRetailer(link string) string {
	value := strings.ToLower(strings.TrimSpace(link))
	if value == "" {
		return "Unknown"
	}

	for _, entry := range retailerKeywords {
		if strings.Contains(value, entry.Key) {
			return entry.Name
		}
	}
	if strings.Contains(value, "urban") && strings.Contains(value, "ladder") {
		return "Urban Ladder"
	}
	for _, entry := range retailerKeywordsTail {
		if strings.Contains(value, entry.Key) {
			return entry.Name
		}
	}

	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Host == "" {
		return "Unknown"
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return "Unknown"
	}
	return titleCase(label)
}

// CleanRetailerName normalizes a source label from a structured feed
// ("amazon.in" → "Amazon").
func CleanRetailerName(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.ReplaceAll(value, ".in", "")
	value = strings.ReplaceAll(value, ".com", "")
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return titleCase(value)
}

func titleCase(value string) string {
	fields := strings.Fields(strings.ToLower(value))
	for i, field := range fields {
		fields[i] = strings.ToUpper(field[:1]) + field[1:]
	}
	return strings.Join(fields, " ")
}
