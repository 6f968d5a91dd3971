// Package fundamentals derives the normalized ratios of an evaluation. Every
// function is total: an undefined result is nil, never a panic or an error.
package fundamentals

import (
	"github.com/shopspring/decimal"

	"FinSignal/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// GrowthRate computes net income growth. A zero or negative base year has no
// meaningful percentage: a positive recent year is reported as turned
// profitable and anything else as remained unprofitable.
func GrowthRate(recent, previous *decimal.Decimal) *models.Growth {
	if recent == nil || previous == nil {
		return nil
	}
	if previous.IsPositive() {
		pct := recent.Sub(*previous).Div(*previous).Mul(hundred)
		return models.OrdinaryGrowth(pct.InexactFloat64())
	}
	if recent.IsPositive() {
		return &models.Growth{Kind: models.GrowthTurnedProfitable}
	}
	return &models.Growth{Kind: models.GrowthRemainedUnprofitable}
}

// PER is market capitalization over net income. A loss gives a negative PER.
func PER(marketCap *float64, netIncome *decimal.Decimal) *float64 {
	if marketCap == nil || netIncome == nil || netIncome.IsZero() {
		return nil
	}
	return ptr(decimal.NewFromFloat(*marketCap).Div(*netIncome))
}

// DebtRatio is total liabilities over total equity, in percent.
func DebtRatio(debt, equity *decimal.Decimal) *float64 {
	if debt == nil || equity == nil || equity.IsZero() {
		return nil
	}
	return ptr(debt.Div(*equity).Mul(hundred))
}

// QuickRatio is (current assets - inventories - prepaid expenses) over current
// liabilities, in percent. Missing inventories or prepaid expenses count as 0.
func QuickRatio(currentAssets, inventories, prepaid, currentLiabilities *decimal.Decimal) *float64 {
	if currentAssets == nil || currentLiabilities == nil || currentLiabilities.IsZero() {
		return nil
	}
	quick := *currentAssets
	if inventories != nil {
		quick = quick.Sub(*inventories)
	}
	if prepaid != nil {
		quick = quick.Sub(*prepaid)
	}
	return ptr(quick.Div(*currentLiabilities).Mul(hundred))
}

// MarketCapTier places a market cap on descending band floors. Tier 1 is at or
// above the first floor; each floor the cap falls below adds one tier.
func MarketCapTier(marketCap *float64, floors []float64) *int {
	if marketCap == nil || len(floors) == 0 {
		return nil
	}
	tier := 1
	for _, floor := range floors {
		if *marketCap < floor {
			tier++
		}
	}
	return &tier
}

func ptr(d decimal.Decimal) *float64 {
	v := d.InexactFloat64()
	return &v
}

func toFloat(f *models.Figure) *float64 {
	if f == nil {
		return nil
	}
	return ptr(f.Value)
}
