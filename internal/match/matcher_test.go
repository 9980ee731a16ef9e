package match

import (
	"reflect"
	"testing"
)

func TestMatchWordBoundary(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name      string
		text      string
		watchlist []string
		want      []string
	}{
		{
			name:      "exact symbol",
			text:      "AAPL stock rises on strong earnings",
			watchlist: []string{"AAPL", "TSLA"},
			want:      []string{"AAPL"},
		},
		{
			name:      "symbol inside another word does not match",
			text:      "Special OFFER on all subscriptions",
			watchlist: []string{"F"},
			want:      nil,
		},
		{
			name:      "single letter ticker matches as a word",
			text:      "Ford shares up as F beats delivery estimates",
			watchlist: []string{"F"},
			want:      []string{"F"},
		},
		{
			name:      "case insensitive",
			text:      "tsla deliveries hit a record",
			watchlist: []string{"TSLA"},
			want:      []string{"TSLA"},
		},
		{
			name:      "company alias",
			text:      "Apple launches new AI chip for Macs",
			watchlist: []string{"AAPL"},
			want:      []string{"AAPL"},
		},
		{
			name:      "alias not substring",
			text:      "Pineapple farms report record harvest",
			watchlist: []string{"AAPL"},
			want:      nil,
		},
		{
			name:      "multiple matches preserve watchlist order",
			text:      "Microsoft and Nvidia announce partnership",
			watchlist: []string{"NVDA", "MSFT", "AMZN"},
			want:      []string{"NVDA", "MSFT"},
		},
		{
			name:      "no matches",
			text:      "Oil prices steady ahead of inventory data",
			watchlist: []string{"AAPL", "TSLA"},
			want:      nil,
		},
		{
			name:      "empty watchlist",
			text:      "AAPL hits all-time high",
			watchlist: nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.text, tt.watchlist)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.text, tt.watchlist, got, tt.want)
			}
		})
	}
}

func TestAddAlias(t *testing.T) {
	m := NewMatcher()
	m.AddAlias("shop", "shopify")

	got := m.Match("Shopify posts surprise profit", []string{"SHOP"})
	if len(got) != 1 || got[0] != "SHOP" {
		t.Errorf("Match with custom alias = %v, want [SHOP]", got)
	}
}
