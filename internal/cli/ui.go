package cli

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"FinSignal/internal/domain/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		models.SeverityOrange: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		models.SeverityRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		models.SeverityNoData: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}

	metricLabels = map[models.MetricKind]string{
		models.MetricNetIncomeGrowth: "Net income growth",
		models.MetricMarketCap:       "Market cap",
		models.MetricPER:             "PER",
		models.MetricDebtRatio:       "Debt ratio",
		models.MetricQuickRatio:      "Quick ratio",
		models.MetricDividendYield:   "Dividend yield",
	}
)

// renderSnapshot draws the evaluation as a table with coloured severities.
func renderSnapshot(s *models.Snapshot) string {
	var b strings.Builder

	title := fmt.Sprintf("%s  %s (%s)", s.Security.Ticker, s.Security.DisplayName, s.Security.Venue)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("price %s %s | preset %s | as of %d",
		number(s.Market.Price, 2), s.Market.Currency, s.PresetName, s.Metrics.AsOfYear)))
	b.WriteString("\n")

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		Headers("Metric", "Value", "Basis", "Signal")
	for _, kind := range models.MetricKinds {
		t.Row(metricLabels[kind], metricValue(s, kind), metricBasis(s.Metrics, kind), severity(s.Signals, kind))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(s.Errors) > 0 {
		keys := make([]string, 0, len(s.Errors))
		for k := range s.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(errorStyle.Render(fmt.Sprintf("! %s: %s", k, s.Errors[k])))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderSearch(p models.SearchPage) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d matches, page %d/%d", p.Total, p.Page, p.TotalPages)))
	b.WriteString("\n")
	if len(p.Rows) == 0 {
		b.WriteString(subtleStyle.Render("no results"))
		b.WriteString("\n")
		return b.String()
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		Headers("Ticker", "Name", "Venue")
	for _, r := range p.Rows {
		t.Row(r.Ticker, r.DisplayName, string(r.Venue))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

func metricValue(s *models.Snapshot, kind models.MetricKind) string {
	m := s.Metrics
	switch kind {
	case models.MetricNetIncomeGrowth:
		return growth(m.NetIncomeGrowthPercent)
	case models.MetricMarketCap:
		v := compact(m.MarketCapitalization)
		if m.MarketCapTier != nil {
			v += fmt.Sprintf(" (tier %d)", *m.MarketCapTier)
		}
		return v
	case models.MetricPER:
		return number(m.PER, 2)
	case models.MetricDebtRatio:
		return percent(m.DebtRatioPercent)
	case models.MetricQuickRatio:
		return percent(m.QuickRatioPercent)
	case models.MetricDividendYield:
		return percent(m.DividendYieldPercent)
	}
	return "-"
}

// metricBasis names the fiscal year a figure came from.
func metricBasis(m models.DerivedMetrics, kind models.MetricKind) string {
	var y *int
	switch kind {
	case models.MetricNetIncomeGrowth, models.MetricPER:
		y = m.RecentNetIncomeYear
	case models.MetricDebtRatio, models.MetricQuickRatio:
		y = m.BalanceSheetYear
	case models.MetricDividendYield:
		y = m.DividendYear
	}
	if y == nil {
		return ""
	}
	return "FY" + strconv.Itoa(*y)
}

func severity(signals models.SignalSnapshot, kind models.MetricKind) string {
	sev, ok := signals[kind]
	if !ok {
		return ""
	}
	return severityStyles[sev].Render(string(sev))
}

func growth(g *models.Growth) string {
	if g == nil {
		return "-"
	}
	switch g.Kind {
	case models.GrowthTurnedProfitable:
		return "turned profitable"
	case models.GrowthRemainedUnprofitable:
		return "still unprofitable"
	}
	if g.Percent == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", *g.Percent)
}

func number(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}

// compact prints large amounts with a T/B/M suffix.
func compact(v *float64) string {
	if v == nil {
		return "-"
	}
	a := math.Abs(*v)
	switch {
	case a >= 1e12:
		return fmt.Sprintf("%.2fT", *v/1e12)
	case a >= 1e9:
		return fmt.Sprintf("%.2fB", *v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.2fM", *v/1e6)
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}
