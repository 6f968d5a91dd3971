package models

// MetricKind names one of the six classified metrics. The values double as
// the field prefixes used by saved presets.
type MetricKind string

const (
	MetricNetIncomeGrowth MetricKind = "netIncome"
	MetricMarketCap       MetricKind = "marketCap"
	MetricPER             MetricKind = "per"
	MetricDebtRatio       MetricKind = "debt"
	MetricQuickRatio      MetricKind = "quick"
	MetricDividendYield   MetricKind = "dividend"
)

// MetricKinds lists every classified metric in display order.
var MetricKinds = []MetricKind{
	MetricNetIncomeGrowth,
	MetricMarketCap,
	MetricPER,
	MetricDebtRatio,
	MetricQuickRatio,
	MetricDividendYield,
}

// HigherIsBetter reports the direction of the metric. Market cap is classified
// on its tier number, where tier 1 is the largest.
func (k MetricKind) HigherIsBetter() bool {
	switch k {
	case MetricNetIncomeGrowth, MetricQuickRatio, MetricDividendYield:
		return true
	}
	return false
}

// Thresholds are the three boundaries of one metric.
type Thresholds struct {
	Warning float64 `json:"warning" yaml:"warning"`
	Danger  float64 `json:"danger" yaml:"danger"`
	Caution float64 `json:"caution" yaml:"caution"`
}

// ThresholdPreset is a named set of thresholds owned by a user.
type ThresholdPreset struct {
	Name        string     `json:"presetName" yaml:"preset_name" validate:"required,max=50"`
	Description string     `json:"description" yaml:"description" validate:"required,max=200"`
	NetIncome   Thresholds `json:"netIncome" yaml:"net_income"`
	MarketCap   Thresholds `json:"marketCap" yaml:"market_cap"`
	PER         Thresholds `json:"per" yaml:"per"`
	Debt        Thresholds `json:"debt" yaml:"debt"`
	Quick       Thresholds `json:"quick" yaml:"quick"`
	Dividend    Thresholds `json:"dividend" yaml:"dividend"`
}

// For returns the thresholds of a metric kind.
func (p ThresholdPreset) For(kind MetricKind) (Thresholds, bool) {
	switch kind {
	case MetricNetIncomeGrowth:
		return p.NetIncome, true
	case MetricMarketCap:
		return p.MarketCap, true
	case MetricPER:
		return p.PER, true
	case MetricDebtRatio:
		return p.Debt, true
	case MetricQuickRatio:
		return p.Quick, true
	case MetricDividendYield:
		return p.Dividend, true
	}
	return Thresholds{}, false
}

// SystemPresetName is the name of the built-in preset used when a user has none.
const SystemPresetName = "system"

// SystemPreset returns the built-in thresholds.
func SystemPreset() ThresholdPreset {
	return ThresholdPreset{
		Name:        SystemPresetName,
		Description: "built-in thresholds",
		NetIncome:   Thresholds{Warning: 0, Danger: 5, Caution: 15},
		MarketCap:   Thresholds{Warning: 4, Danger: 3, Caution: 2},
		PER:         Thresholds{Warning: 30, Danger: 20, Caution: 10},
		Debt:        Thresholds{Warning: 300, Danger: 200, Caution: 100},
		Quick:       Thresholds{Warning: 30, Danger: 50, Caution: 100},
		Dividend:    Thresholds{Warning: 0.5, Danger: 1, Caution: 3},
	}
}
