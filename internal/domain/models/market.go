package models

// Quote is the current quote as reported by the quote provider.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Currency      string   `json:"currency"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	MarketCap     *float64 `json:"marketCap"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// MarketSnapshot holds market data for one evaluation. Fields are nil when
// the corresponding upstream leg failed.
type MarketSnapshot struct {
	Symbol               string            `json:"symbol"`
	Currency             string            `json:"currency,omitempty"`
	Price                *float64          `json:"price"`
	ChangeAmount         *float64          `json:"changeAmount"`
	ChangeRatePercent    *float64          `json:"changeRatePercent"`
	MarketCapitalization *float64          `json:"marketCapitalization"`
	PriceSeries          []PricePoint      `json:"priceSeries"`
	Errors               map[string]string `json:"errors,omitempty"`
}
