package common

import "testing"

func TestResolveRetailer(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.amazon.in/dp/B0DGJ7TGDR", "Amazon"},
		{"https://www.flipkart.com/apple-iphone-16/p/itm", "Flipkart"},
		{"https://www.croma.com/apple-iphone", "Croma"},
		{"https://www.reliancedigital.in/product", "Reliance Digital"},
		{"https://paytmmall.com/phone", "Paytm Mall"},
		{"https://www.jiomart.com/p/phone", "JioMart"},
		{"https://www.tatacliq.com/phone", "Tata CLiQ"},
		{"https://www.urbanladder.com/sofa", "Urban Ladder"},
		{"https://www.vijaysales.com/phone", "Vijaysales"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		got := ResolveRetailer(tt.link)
		if got != tt.want {
			t.Errorf("ResolveRetailer(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestCleanRetailerName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Amazon.in", "Amazon"},
		{"flipkart.com", "Flipkart"},
		{"vijay sales", "Vijay Sales"},
		{"", ""},
	}
	for _, tt := range tests {
		got := CleanRetailerName(tt.raw)
		if got != tt.want {
			t.Errorf("CleanRetailerName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
