package domain

import "github.com/shopspring/decimal"

// AssetQuote is one row of the listing table as displayed on the page.
// Every field is the raw display string, e.g. "$20,123.45" or "2.5 B".
type AssetQuote struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Volume24h string `json:"volume_24h"`
	MarketCap string `json:"market_cap"`
}

// Quote is an AssetQuote with every metric parsed. Volume24h and MarketCap
// hold whole millions of USD.
type Quote struct {
	Rank      int             `json:"rank"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	MarketCap decimal.Decimal `json:"market_cap"`
}

// Value returns the metric of q tracked under category.
func (q Quote) Value(category ValueCategory) (decimal.Decimal, bool) {
	switch category {
	case CategoryPrice:
		return q.Price, true
	case CategoryVolume:
		return q.Volume24h, true
	case CategoryChange:
		return q.Change24h, true
	case CategoryMarketCap:
		return q.MarketCap, true
	default:
		return decimal.Zero, false
	}
}
