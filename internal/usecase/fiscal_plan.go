package usecase

import (
	"fmt"
	"strings"

	"FinSignal/internal/domain/models"
	"FinSignal/pkg/util"
)

// Schema is one way of asking the disclosure provider for account rows.
type Schema string

const (
	SchemaStandardConsolidated Schema = "standard/CFS"
	SchemaStandardSeparate     Schema = "standard/OFS"
	SchemaLegacy               Schema = "legacy"
)

// schemaOrder is the order schemas are tried within one fiscal year.
var schemaOrder = []Schema{SchemaStandardConsolidated, SchemaStandardSeparate, SchemaLegacy}

// Step is one (schema, fiscal year) attempt of a fallback chain.
type Step struct {
	Schema Schema
	Year   int
}

func (s Step) String() string { return fmt.Sprintf("%s@%d", s.Schema, s.Year) }

// IncomeWindow pairs the steps for the recent year with those for the year
// before it, used for growth.
type IncomeWindow struct {
	Recent   []Step
	Previous []Step
}

// FiscalPlan is the full fallback order of one fetch.
type FiscalPlan struct {
	Income       []IncomeWindow
	BalanceSheet []Step
	Dividend     []int
}

// Plan builds the fallback order for an as-of year. Income starts at the last
// completed fiscal year and shifts one year back once for reporting lag.
// Balance sheet and dividend walk back lookback years.
func Plan(asOfYear, lookback int) FiscalPlan {
	if lookback <= 0 {
		lookback = 3
	}
	var p FiscalPlan
	for _, y := range util.YearsBack(asOfYear-1, 2) {
		p.Income = append(p.Income, IncomeWindow{Recent: stepsFor(y), Previous: stepsFor(y - 1)})
	}
	for _, y := range util.YearsBack(asOfYear-1, lookback) {
		p.BalanceSheet = append(p.BalanceSheet, stepsFor(y)...)
	}
	p.Dividend = util.YearsBack(asOfYear-1, lookback)
	return p
}

func stepsFor(year int) []Step {
	steps := make([]Step, 0, len(schemaOrder))
	for _, s := range schemaOrder {
		steps = append(steps, Step{Schema: s, Year: year})
	}
	return steps
}

// accountMatcher finds one account among provider rows. Standard schemas match
// on account ids in priority order; the legacy schema matches on names after
// whitespace removal and prefers consolidated rows.
type accountMatcher struct {
	ids   []string
	names []string
}

var (
	netIncomeAccount = accountMatcher{
		ids:   []string{"ifrs-full_ProfitLoss", "ifrs_ProfitLoss", "ifrs-full_ProfitLossAttributableToOwnersOfParent"},
		names: []string{"당기순이익", "당기순이익(손실)", "연결당기순이익"},
	}
	totalDebtAccount = accountMatcher{
		ids:   []string{"ifrs-full_Liabilities", "ifrs_Liabilities"},
		names: []string{"부채총계"},
	}
	totalEquityAccount = accountMatcher{
		ids:   []string{"ifrs-full_Equity", "ifrs_Equity"},
		names: []string{"자본총계"},
	}
	currentAssetsAccount = accountMatcher{
		ids:   []string{"ifrs-full_CurrentAssets", "ifrs_CurrentAssets"},
		names: []string{"유동자산"},
	}
	inventoriesAccount = accountMatcher{
		ids:   []string{"ifrs-full_Inventories", "ifrs_Inventories"},
		names: []string{"재고자산"},
	}
	prepaidAccount = accountMatcher{
		ids:   []string{"ifrs-full_CurrentPrepaidExpenses", "dart_ShortTermPrepaidExpenses"},
		names: []string{"선급비용"},
	}
	currentLiabilitiesAccount = accountMatcher{
		ids:   []string{"ifrs-full_CurrentLiabilities", "ifrs_CurrentLiabilities"},
		names: []string{"유동부채"},
	}
)

func (m accountMatcher) find(items []models.FiscalLineItem, schema Schema) *models.FiscalLineItem {
	if schema == SchemaLegacy {
		for _, scope := range []models.ConsolidationScope{models.ScopeConsolidated, models.ScopeSeparate, ""} {
			for i := range items {
				if items[i].Scope == scope && m.matchName(items[i].AccountName) {
					return &items[i]
				}
			}
		}
		return nil
	}
	for _, id := range m.ids {
		for i := range items {
			if items[i].AccountID == id {
				return &items[i]
			}
		}
	}
	return nil
}

func (m accountMatcher) matchName(name string) bool {
	c := util.Compact(name)
	for _, n := range m.names {
		if c == util.Compact(n) {
			return true
		}
	}
	return false
}

func filterStatements(items []models.FiscalLineItem, keep func(models.StatementType) bool) []models.FiscalLineItem {
	out := make([]models.FiscalLineItem, 0, len(items))
	for _, it := range items {
		if keep(it.Statement) {
			out = append(out, it)
		}
	}
	return out
}

func isIncome(s models.StatementType) bool { return s.IsIncome() }

func isBalanceSheet(s models.StatementType) bool { return s == models.StatementBalanceSheet }

const (
	dividendPerShareLabel = "주당현금배당금"
	dividendYieldLabel    = "현금배당수익률"
	ordinaryShareLabel    = "보통주"
)

// findDividend returns the ordinary-share row whose category contains label
// and whose value is not a placeholder.
func findDividend(items []models.DividendItem, label string) (models.DividendItem, bool) {
	for _, it := range items {
		if !strings.Contains(util.Compact(it.StockKind), ordinaryShareLabel) {
			continue
		}
		if !strings.Contains(util.Compact(it.Category), label) {
			continue
		}
		if v := strings.TrimSpace(it.Value); v == "" || v == "-" {
			continue
		}
		return it, true
	}
	return models.DividendItem{}, false
}
