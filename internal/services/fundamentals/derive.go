package fundamentals

import "FinSignal/internal/domain/models"

// Derive computes DerivedMetrics from fetched facts and the market snapshot.
// bands maps a quote currency to its market cap tier floors. market may be nil.
func Derive(facts models.FiscalFacts, market *models.MarketSnapshot, bands map[string][]float64, asOfYear int) models.DerivedMetrics {
	m := models.DerivedMetrics{AsOfYear: asOfYear}

	if market != nil && market.MarketCapitalization != nil {
		mc := *market.MarketCapitalization
		m.MarketCapitalization = &mc
		m.MarketCapTier = MarketCapTier(m.MarketCapitalization, bands[market.Currency])
	}

	m.RecentNetIncome = toFloat(facts.NetIncome)
	m.RecentNetIncomeYear = facts.NetIncome.Year()
	m.NetIncomeGrowthPercent = GrowthRate(facts.NetIncome.Decimal(), facts.PreviousNetIncome.Decimal())
	m.PER = PER(m.MarketCapitalization, facts.NetIncome.Decimal())

	m.DebtRatioPercent = DebtRatio(facts.TotalDebt.Decimal(), facts.TotalEquity.Decimal())
	m.QuickRatioPercent = QuickRatio(
		facts.CurrentAssets.Decimal(),
		facts.Inventories.Decimal(),
		facts.PrepaidExpenses.Decimal(),
		facts.CurrentLiabilities.Decimal(),
	)
	for _, f := range []*models.Figure{facts.TotalDebt, facts.TotalEquity, facts.CurrentAssets, facts.CurrentLiabilities} {
		if f != nil {
			m.BalanceSheetYear = f.Year()
			break
		}
	}

	m.DividendYieldPercent = toFloat(facts.DividendYieldPercent)
	m.DividendPerShare = toFloat(facts.DividendPerShare)
	if facts.DividendPerShare != nil {
		m.DividendYear = facts.DividendPerShare.Year()
	}
	return m
}
