package models

import (
	"github.com/shopspring/decimal"
)

// StatementType mirrors the disclosure provider's statement division codes.
type StatementType string

const (
	StatementIncome              StatementType = "IS"
	StatementComprehensiveIncome StatementType = "CIS"
	StatementBalanceSheet        StatementType = "BS"
)

// IsIncome reports whether the statement carries income figures.
func (s StatementType) IsIncome() bool {
	return s == StatementIncome || s == StatementComprehensiveIncome
}

// ConsolidationScope selects consolidated or separate statements.
type ConsolidationScope string

const (
	ScopeConsolidated ConsolidationScope = "CFS"
	ScopeSeparate     ConsolidationScope = "OFS"
)

// FiscalLineItem is a single account row of a disclosure, amount already normalized.
type FiscalLineItem struct {
	AccountID   string             `json:"accountId,omitempty"`
	AccountName string             `json:"accountName"`
	Statement   StatementType      `json:"statement"`
	Scope       ConsolidationScope `json:"scope,omitempty"`
	FiscalYear  int                `json:"fiscalYear"`
	Amount      decimal.Decimal    `json:"amount"`
}

// DividendItem is one row of the dividend-matters disclosure. Value is kept raw
// because the provider uses "-" as a placeholder.
type DividendItem struct {
	Category   string `json:"category"`
	StockKind  string `json:"stockKind"`
	FiscalYear int    `json:"fiscalYear"`
	Value      string `json:"value"`
}

// Figure is a fiscal amount labeled with the year and fallback step it came from.
type Figure struct {
	Value      decimal.Decimal `json:"value"`
	FiscalYear int             `json:"fiscalYear"`
	Source     string          `json:"source"`
}

// Decimal returns a pointer to the value, or nil for a nil figure.
func (f *Figure) Decimal() *decimal.Decimal {
	if f == nil {
		return nil
	}
	v := f.Value
	return &v
}

// Year returns a pointer to the fiscal year, or nil for a nil figure.
func (f *Figure) Year() *int {
	if f == nil {
		return nil
	}
	y := f.FiscalYear
	return &y
}

// FiscalFacts collects figures from the three independent retrieval chains.
// Each field may come from a different fiscal year.
type FiscalFacts struct {
	FiscalYear           int     `json:"fiscalYear"`
	NetIncome            *Figure `json:"netIncome"`
	PreviousNetIncome    *Figure `json:"previousNetIncome"`
	TotalDebt            *Figure `json:"totalDebt"`
	TotalEquity          *Figure `json:"totalEquity"`
	CurrentAssets        *Figure `json:"currentAssets"`
	Inventories          *Figure `json:"inventories"`
	PrepaidExpenses      *Figure `json:"prepaidExpenses"`
	CurrentLiabilities   *Figure `json:"currentLiabilities"`
	DividendPerShare     *Figure `json:"dividendPerShare"`
	DividendYieldPercent *Figure `json:"dividendYieldPercent"`
}
