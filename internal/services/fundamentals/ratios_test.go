package fundamentals

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"FinSignal/internal/domain/models"
)

func d(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

func fp(v float64) *float64 { return &v }

func TestGrowthRate(t *testing.T) {
	g := GrowthRate(d(110), d(100))
	if g == nil || g.Kind != models.GrowthOrdinary || g.Percent == nil || *g.Percent != 10 {
		t.Fatalf("110 over 100: got %+v", g)
	}

	g = GrowthRate(d(80), d(100))
	if g == nil || g.Percent == nil || *g.Percent != -20 {
		t.Fatalf("80 over 100: got %+v", g)
	}

	// A zero or negative base year never yields a percentage. Recent profit is
	// "turned profitable", recent loss or zero is "remained unprofitable".
	if g := GrowthRate(d(30), d(-50)); g == nil || g.Kind != models.GrowthTurnedProfitable {
		t.Fatalf("-50 -> 30: got %+v", g)
	}
	if g := GrowthRate(d(-10), d(-50)); g == nil || g.Kind != models.GrowthRemainedUnprofitable {
		t.Fatalf("-50 -> -10: got %+v", g)
	}
	if g := GrowthRate(d(5), d(0)); g == nil || g.Kind != models.GrowthTurnedProfitable {
		t.Fatalf("0 -> 5: got %+v", g)
	}
	if g := GrowthRate(d(5), d(0)); g.Percent != nil {
		t.Fatalf("turned profitable carries a percent: %v", *g.Percent)
	}
	if g := GrowthRate(d(0), d(0)); g == nil || g.Kind != models.GrowthRemainedUnprofitable {
		t.Fatalf("0 -> 0: got %+v", g)
	}

	if GrowthRate(nil, d(100)) != nil || GrowthRate(d(100), nil) != nil {
		t.Fatalf("nil input must give nil growth")
	}
}

func TestPER(t *testing.T) {
	if got := PER(fp(1000), d(0)); got != nil {
		t.Fatalf("zero net income: got %v", *got)
	}
	if got := PER(fp(1000), d(100)); got == nil || *got != 10 {
		t.Fatalf("1000/100: got %v", got)
	}
	if got := PER(fp(1000), d(-50)); got == nil || *got != -20 {
		t.Fatalf("1000/-50: got %v", got)
	}
	if PER(nil, d(100)) != nil || PER(fp(1000), nil) != nil {
		t.Fatalf("missing input must give nil")
	}
}

func TestDebtRatio(t *testing.T) {
	if got := DebtRatio(d(150), d(100)); got == nil || *got != 150 {
		t.Fatalf("150/100: got %v", got)
	}
	if DebtRatio(d(150), d(0)) != nil || DebtRatio(nil, d(1)) != nil {
		t.Fatalf("zero or missing equity must give nil")
	}
}

func TestQuickRatio(t *testing.T) {
	if got := QuickRatio(d(300), nil, nil, d(200)); got == nil || *got != 150 {
		t.Fatalf("missing inventories and prepaid count as 0: got %v", got)
	}
	if got := QuickRatio(d(300), d(50), d(10), d(200)); got == nil || *got != 120 {
		t.Fatalf("(300-50-10)/200: got %v", got)
	}
	if QuickRatio(d(300), nil, nil, d(0)) != nil {
		t.Fatalf("zero current liabilities must give nil")
	}
	if QuickRatio(nil, nil, nil, d(200)) != nil {
		t.Fatalf("missing current assets must give nil")
	}
}

func TestMarketCapTier(t *testing.T) {
	floors := []float64{10e12, 1e12, 300e9, 100e9}
	cases := []struct {
		mc   float64
		want int
	}{
		{400e12, 1},
		{10e12, 1},
		{5e12, 2},
		{500e9, 3},
		{150e9, 4},
		{50e9, 5},
	}
	for _, c := range cases {
		got := MarketCapTier(fp(c.mc), floors)
		if got == nil || *got != c.want {
			t.Fatalf("tier(%v) = %v, want %d", c.mc, got, c.want)
		}
	}
	if MarketCapTier(fp(1), nil) != nil || MarketCapTier(nil, floors) != nil {
		t.Fatalf("unknown bands or cap must give nil")
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	fig := func(v int64, y int) *models.Figure {
		return &models.Figure{Value: decimal.NewFromInt(v), FiscalYear: y, Source: "standard/CFS"}
	}
	facts := models.FiscalFacts{
		FiscalYear:           2024,
		NetIncome:            fig(200, 2024),
		PreviousNetIncome:    fig(100, 2023),
		TotalDebt:            fig(50, 2024),
		TotalEquity:          fig(100, 2024),
		CurrentAssets:        fig(300, 2024),
		CurrentLiabilities:   fig(200, 2024),
		DividendPerShare:     fig(1000, 2023),
		DividendYieldPercent: &models.Figure{Value: decimal.RequireFromString("2.5"), FiscalYear: 2023},
	}
	market := &models.MarketSnapshot{Currency: "KRW", MarketCapitalization: fp(4000)}
	bands := map[string][]float64{"KRW": {10e12, 1e12, 300e9, 100e9}}

	m := Derive(facts, market, bands, 2025)
	if m.PER == nil || *m.PER != 20 {
		t.Fatalf("per: got %v", m.PER)
	}
	if m.NetIncomeGrowthPercent == nil || m.NetIncomeGrowthPercent.Percent == nil || *m.NetIncomeGrowthPercent.Percent != 100 {
		t.Fatalf("growth: got %+v", m.NetIncomeGrowthPercent)
	}
	if m.DebtRatioPercent == nil || *m.DebtRatioPercent != 50 {
		t.Fatalf("debt: got %v", m.DebtRatioPercent)
	}
	if m.QuickRatioPercent == nil || *m.QuickRatioPercent != 150 {
		t.Fatalf("quick: got %v", m.QuickRatioPercent)
	}
	if m.DividendYieldPercent == nil || *m.DividendYieldPercent != 2.5 {
		t.Fatalf("dividend: got %v", m.DividendYieldPercent)
	}
	if *m.RecentNetIncomeYear != 2024 || *m.BalanceSheetYear != 2024 || *m.DividendYear != 2023 {
		t.Fatalf("years not labeled per figure: %+v", m)
	}
	if m.MarketCapTier == nil || *m.MarketCapTier != 5 {
		t.Fatalf("tier: got %v", m.MarketCapTier)
	}

	a, _ := json.Marshal(m)
	b, _ := json.Marshal(Derive(facts, market, bands, 2025))
	if string(a) != string(b) {
		t.Fatalf("derive is not deterministic:\n%s\n%s", a, b)
	}
}

func TestDeriveWithoutFacts(t *testing.T) {
	m := Derive(models.FiscalFacts{}, &models.MarketSnapshot{Currency: "USD", MarketCapitalization: fp(3e12)}, nil, 2025)
	if m.MarketCapitalization == nil || *m.MarketCapitalization != 3e12 {
		t.Fatalf("market cap must survive missing facts")
	}
	if m.NetIncomeGrowthPercent != nil || m.PER != nil || m.DebtRatioPercent != nil || m.QuickRatioPercent != nil || m.DividendYieldPercent != nil {
		t.Fatalf("expected nil fiscal metrics: %+v", m)
	}
	if m.MarketCapTier != nil {
		t.Fatalf("no bands for currency must give nil tier")
	}
}

func TestSignFlipGrowthEncodesNullPercent(t *testing.T) {
	for _, g := range []*models.Growth{GrowthRate(d(30), d(-50)), GrowthRate(d(-10), d(-50))} {
		b, err := json.Marshal(g)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if want := `{"kind":"` + string(g.Kind) + `","percent":null}`; string(b) != want {
			t.Fatalf("got %s, want %s", b, want)
		}
	}
	b, err := json.Marshal(GrowthRate(d(110), d(100)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"kind":"ordinary","percent":10}` {
		t.Fatalf("ordinary growth: got %s", b)
	}
}
