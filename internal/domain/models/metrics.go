package models

import "math"

// GrowthKind distinguishes an ordinary growth percentage from the two
// sign-flip cases that have no meaningful percentage.
type GrowthKind string

const (
	GrowthOrdinary             GrowthKind = "ordinary"
	GrowthTurnedProfitable     GrowthKind = "turned_profitable"
	GrowthRemainedUnprofitable GrowthKind = "remained_unprofitable"
)

// Growth is a net income growth rate. Percent is set only for GrowthOrdinary.
type Growth struct {
	Kind    GrowthKind `json:"kind"`
	Percent *float64   `json:"percent"`
}

// OrdinaryGrowth is a plain percentage change.
func OrdinaryGrowth(percent float64) *Growth {
	return &Growth{Kind: GrowthOrdinary, Percent: &percent}
}

// ClassValue maps the growth onto the number line used for classification:
// turned profitable is +Inf, remained unprofitable is -Inf.
func (g *Growth) ClassValue() *float64 {
	if g == nil {
		return nil
	}
	var v float64
	switch g.Kind {
	case GrowthTurnedProfitable:
		v = math.Inf(1)
	case GrowthRemainedUnprofitable:
		v = math.Inf(-1)
	default:
		if g.Percent == nil {
			return nil
		}
		v = *g.Percent
	}
	return &v
}

// DerivedMetrics is the pure output of the derivation step.
type DerivedMetrics struct {
	AsOfYear               int      `json:"asOfYear"`
	MarketCapitalization   *float64 `json:"marketCapitalization"`
	MarketCapTier          *int     `json:"marketCapTier"`
	RecentNetIncome        *float64 `json:"recentNetIncome"`
	RecentNetIncomeYear    *int     `json:"recentNetIncomeYear"`
	NetIncomeGrowthPercent *Growth  `json:"netIncomeGrowthPercent"`
	PER                    *float64 `json:"per"`
	DebtRatioPercent       *float64 `json:"debtRatioPercent"`
	QuickRatioPercent      *float64 `json:"quickRatioPercent"`
	DividendYieldPercent   *float64 `json:"dividendYieldPercent"`
	DividendPerShare       *float64 `json:"dividendPerShare"`
	BalanceSheetYear       *int     `json:"balanceSheetYear"`
	DividendYear           *int     `json:"dividendYear"`
}

// Value returns the number a metric kind is classified on.
func (m DerivedMetrics) Value(kind MetricKind) *float64 {
	switch kind {
	case MetricNetIncomeGrowth:
		return m.NetIncomeGrowthPercent.ClassValue()
	case MetricMarketCap:
		if m.MarketCapTier == nil {
			return nil
		}
		v := float64(*m.MarketCapTier)
		return &v
	case MetricPER:
		return m.PER
	case MetricDebtRatio:
		return m.DebtRatioPercent
	case MetricQuickRatio:
		return m.QuickRatioPercent
	case MetricDividendYield:
		return m.DividendYieldPercent
	}
	return nil
}
