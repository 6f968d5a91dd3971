package models

import "time"

// EvaluationRecord is the flattened form of a Snapshot published to the
// evaluation topic and kept in the history table.
type EvaluationRecord struct {
	RequestID     string         `json:"request_id"`
	UserID        string         `json:"user_id,omitempty"`
	Ticker        string         `json:"ticker"`
	Venue         string         `json:"venue"`
	EvaluatedAt   time.Time      `json:"evaluated_at"`
	Price         *float64       `json:"price"`
	MarketCap     *float64       `json:"market_cap"`
	GrowthKind    string         `json:"growth_kind,omitempty"`
	GrowthPercent *float64       `json:"growth_percent"`
	PER           *float64       `json:"per"`
	DebtRatio     *float64       `json:"debt_ratio"`
	QuickRatio    *float64       `json:"quick_ratio"`
	DividendYield *float64       `json:"dividend_yield"`
	PresetName    string         `json:"preset_name,omitempty"`
	Signals       SignalSnapshot `json:"signals,omitempty"`
}

// NewEvaluationRecord flattens a snapshot.
func NewEvaluationRecord(s *Snapshot, userID string) EvaluationRecord {
	r := EvaluationRecord{
		RequestID:     s.RequestID,
		UserID:        userID,
		Ticker:        s.Security.Ticker,
		Venue:         string(s.Security.Venue),
		EvaluatedAt:   s.EvaluatedAt,
		Price:         s.Market.Price,
		MarketCap:     s.Metrics.MarketCapitalization,
		PER:           s.Metrics.PER,
		DebtRatio:     s.Metrics.DebtRatioPercent,
		QuickRatio:    s.Metrics.QuickRatioPercent,
		DividendYield: s.Metrics.DividendYieldPercent,
		PresetName:    s.PresetName,
		Signals:       s.Signals,
	}
	if g := s.Metrics.NetIncomeGrowthPercent; g != nil {
		r.GrowthKind = string(g.Kind)
		if g.Kind == GrowthOrdinary && g.Percent != nil {
			p := *g.Percent
			r.GrowthPercent = &p
		}
	}
	return r
}
