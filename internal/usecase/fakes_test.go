package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"

	"github.com/shopspring/decimal"
)

type fakeTable struct {
	rows []models.SecurityIdentity
}

func (t fakeTable) Lookup(ticker string) (models.SecurityIdentity, bool) {
	for _, r := range t.rows {
		if r.Ticker == ticker {
			return r, true
		}
	}
	return models.SecurityIdentity{}, false
}

func (t fakeTable) All() []models.SecurityIdentity { return t.rows }

var samsung = models.SecurityIdentity{
	Ticker:               "005930",
	DisplayName:          "삼성전자",
	Venue:                models.VenueKOSPI,
	DisclosureRegistryID: "00126380",
}

var apple = models.SecurityIdentity{Ticker: "AAPL", DisplayName: "Apple Inc.", Venue: models.VenueNASDAQ}

type fakeQuotes struct {
	quote    *models.Quote
	quoteErr error
	series   []models.PricePoint
	histErr  error

	mu      sync.Mutex
	symbols []string
}

func (f *fakeQuotes) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	f.mu.Lock()
	f.symbols = append(f.symbols, symbol)
	f.mu.Unlock()
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	return &q, nil
}

func (f *fakeQuotes) Historical(_ context.Context, symbol string, _, _ time.Time) ([]models.PricePoint, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
	return append([]models.PricePoint(nil), f.series...), nil
}

func okQuotes() *fakeQuotes {
	mc := 400e12
	return &fakeQuotes{
		quote: &models.Quote{Symbol: "005930.KS", Currency: "KRW", Price: 71000, Change: -500, ChangePercent: -0.7, MarketCap: &mc},
		series: []models.PricePoint{
			{Date: "2025-03-03", Close: 70500},
			{Date: "2025-03-04", Close: 71000},
		},
	}
}

// fakeDisclosure serves canned rows keyed by step. Unknown steps are empty.
// Calls for keys in hang block until their context ends.
type fakeDisclosure struct {
	rows      map[Step][]models.FiscalLineItem
	dividends map[int][]models.DividendItem
	err       error
	hang      map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newFakeDisclosure() *fakeDisclosure {
	return &fakeDisclosure{
		rows:      map[Step][]models.FiscalLineItem{},
		dividends: map[int][]models.DividendItem{},
		hang:      map[string]bool{},
		calls:     map[string]int{},
	}
}

func (f *fakeDisclosure) serve(ctx context.Context, key string) error {
	f.count(key)
	if f.hang[key] {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeDisclosure) count(key string) {
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
}

func (f *fakeDisclosure) callsFor(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeDisclosure) StandardAccounts(ctx context.Context, _ string, year int, scope models.ConsolidationScope) ([]models.FiscalLineItem, error) {
	schema := SchemaStandardConsolidated
	if scope == models.ScopeSeparate {
		schema = SchemaStandardSeparate
	}
	step := Step{Schema: schema, Year: year}
	if err := f.serve(ctx, step.String()); err != nil {
		return nil, err
	}
	return f.rows[step], nil
}

func (f *fakeDisclosure) LegacyAccounts(ctx context.Context, _ string, year int) ([]models.FiscalLineItem, error) {
	step := Step{Schema: SchemaLegacy, Year: year}
	if err := f.serve(ctx, step.String()); err != nil {
		return nil, err
	}
	return f.rows[step], nil
}

func (f *fakeDisclosure) Dividends(ctx context.Context, _ string, year int) ([]models.DividendItem, error) {
	if err := f.serve(ctx, fmt.Sprintf("dividend@%d", year)); err != nil {
		return nil, err
	}
	return f.dividends[year], nil
}

func row(stmt models.StatementType, id, name string, amount int64) models.FiscalLineItem {
	return models.FiscalLineItem{AccountID: id, AccountName: name, Statement: stmt, Amount: decimal.NewFromInt(amount)}
}

func legacyRow(scope models.ConsolidationScope, stmt models.StatementType, name string, amount int64) models.FiscalLineItem {
	return models.FiscalLineItem{AccountName: name, Statement: stmt, Scope: scope, Amount: decimal.NewFromInt(amount)}
}

var testBands = map[string][]float64{
	"KRW": {10e12, 1e12, 300e9, 100e9},
	"USD": {200e9, 10e9, 2e9, 300e6},
}

func newTestAggregator(table fakeTable, quotes *fakeQuotes, dart *fakeDisclosure) *Aggregator {
	return newTestAggregatorWithTimeout(table, quotes, dart, time.Second)
}

func newTestAggregatorWithTimeout(table fakeTable, quotes *fakeQuotes, dart *fakeDisclosure, upstream time.Duration) *Aggregator {
	fixed := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	l := applogger.Nop()
	m := metrics.Noop{}

	mf := NewMarketFetcher(quotes, VenueSuffixRule(map[string]string{"KOSPI": ".KS", "KOSDAQ": ".KQ"}),
		MarketFetcherConfig{HistoryDays: 30, UpstreamTimeout: upstream}, m, l)
	mf.now = func() time.Time { return fixed }
	ff := NewFiscalFetcher(dart, FiscalFetcherConfig{LookbackYears: 3, UpstreamTimeout: upstream}, m, l)

	agg := NewAggregator(NewResolver(table), mf, ff, AggregatorConfig{RequestTimeout: 5 * time.Second, MarketCapBands: testBands}, m, l)
	agg.now = func() time.Time { return fixed }
	return agg
}
