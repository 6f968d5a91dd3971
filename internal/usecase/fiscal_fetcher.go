package usecase

import (
	"context"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"
)

// FiscalFetcherConfig holds the fiscal fetcher settings.
type FiscalFetcherConfig struct {
	LookbackYears   int
	UpstreamTimeout time.Duration
}

// FiscalFetcher walks the fallback plan against the disclosure provider.
// Failures never escape: an exhausted chain leaves its figures nil.
type FiscalFetcher struct {
	provider domrepo.DisclosureProvider
	cfg      FiscalFetcherConfig
	metrics  domrepo.Metrics
	logger   *applogger.Logger
}

func NewFiscalFetcher(p domrepo.DisclosureProvider, cfg FiscalFetcherConfig, m domrepo.Metrics, l *applogger.Logger) *FiscalFetcher {
	if cfg.LookbackYears <= 0 {
		cfg.LookbackYears = 3
	}
	return &FiscalFetcher{provider: p, cfg: cfg, metrics: m, logger: l}
}

// FetchFacts runs the income, balance sheet and dividend chains concurrently.
// The returned map names chains that found nothing because of provider errors.
func (f *FiscalFetcher) FetchFacts(ctx context.Context, registryID string, asOfYear int) (models.FiscalFacts, map[string]string) {
	facts := models.FiscalFacts{FiscalYear: asOfYear - 1}
	if registryID == "" {
		return facts, nil
	}

	plan := Plan(asOfYear, f.cfg.LookbackYears)
	loads := newStepMemo()

	type result struct {
		chain string
		apply func(*models.FiscalFacts)
		err   error
	}
	ch := make(chan result, 3)
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		recent, previous, err := f.fetchIncome(ctx, loads, registryID, plan.Income)
		ch <- result{"income", func(ff *models.FiscalFacts) {
			ff.NetIncome, ff.PreviousNetIncome = recent, previous
			if recent != nil {
				ff.FiscalYear = recent.FiscalYear
			}
		}, err}
	}()
	go func() {
		defer wg.Done()
		bs, err := f.fetchBalanceSheet(ctx, loads, registryID, plan.BalanceSheet)
		ch <- result{"balanceSheet", func(ff *models.FiscalFacts) {
			ff.TotalDebt = bs.TotalDebt
			ff.TotalEquity = bs.TotalEquity
			ff.CurrentAssets = bs.CurrentAssets
			ff.Inventories = bs.Inventories
			ff.PrepaidExpenses = bs.PrepaidExpenses
			ff.CurrentLiabilities = bs.CurrentLiabilities
		}, err}
	}()
	go func() {
		defer wg.Done()
		dps, yield, err := f.fetchDividend(ctx, registryID, plan.Dividend)
		ch <- result{"dividend", func(ff *models.FiscalFacts) {
			ff.DividendPerShare, ff.DividendYieldPercent = dps, yield
		}, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	errs := map[string]string{}
	for r := range ch {
		r.apply(&facts)
		if r.err != nil {
			errs[r.chain] = r.err.Error()
		}
	}
	if len(errs) == 0 {
		errs = nil
	}
	return facts, errs
}

// fetchIncome tries each window in turn. A window counts once its recent year
// has a net income figure; the previous year is then best effort.
func (f *FiscalFetcher) fetchIncome(ctx context.Context, loads *stepMemo, id string, windows []IncomeWindow) (*models.Figure, *models.Figure, error) {
	var lastErr error
	for _, w := range windows {
		recent, err := f.firstMatch(ctx, loads, id, "income", w.Recent, netIncomeAccount)
		if err != nil {
			lastErr = err
		}
		if recent == nil {
			continue
		}
		previous, _ := f.firstMatch(ctx, loads, id, "income_previous", w.Previous, netIncomeAccount)
		return recent, previous, nil
	}
	return nil, nil, lastErr
}

func (f *FiscalFetcher) firstMatch(ctx context.Context, loads *stepMemo, id, chain string, steps []Step, m accountMatcher) (*models.Figure, error) {
	var lastErr error
	for _, step := range steps {
		items, err := loads.get(step, func() ([]models.FiscalLineItem, error) {
			return f.load(ctx, id, step)
		})
		if err != nil {
			lastErr = err
			f.stepFailed(chain, id, step, err)
			continue
		}
		if hit := m.find(filterStatements(items, isIncome), step.Schema); hit != nil {
			f.metrics.RecordFallbackStep(chain, string(step.Schema))
			return &models.Figure{Value: hit.Amount, FiscalYear: step.Year, Source: string(step.Schema)}, nil
		}
	}
	return nil, lastErr
}

type balanceSheet struct {
	TotalDebt          *models.Figure
	TotalEquity        *models.Figure
	CurrentAssets      *models.Figure
	Inventories        *models.Figure
	PrepaidExpenses    *models.Figure
	CurrentLiabilities *models.Figure
}

// fetchBalanceSheet takes every figure from the first step whose balance
// sheet section is non-empty, so figures never mix years.
func (f *FiscalFetcher) fetchBalanceSheet(ctx context.Context, loads *stepMemo, id string, steps []Step) (balanceSheet, error) {
	var lastErr error
	for _, step := range steps {
		items, err := loads.get(step, func() ([]models.FiscalLineItem, error) {
			return f.load(ctx, id, step)
		})
		if err != nil {
			lastErr = err
			f.stepFailed("balanceSheet", id, step, err)
			continue
		}
		section := filterStatements(items, isBalanceSheet)
		if len(section) == 0 {
			continue
		}
		f.metrics.RecordFallbackStep("balanceSheet", string(step.Schema))
		pick := func(m accountMatcher) *models.Figure {
			hit := m.find(section, step.Schema)
			if hit == nil {
				return nil
			}
			return &models.Figure{Value: hit.Amount, FiscalYear: step.Year, Source: string(step.Schema)}
		}
		return balanceSheet{
			TotalDebt:          pick(totalDebtAccount),
			TotalEquity:        pick(totalEquityAccount),
			CurrentAssets:      pick(currentAssetsAccount),
			Inventories:        pick(inventoriesAccount),
			PrepaidExpenses:    pick(prepaidAccount),
			CurrentLiabilities: pick(currentLiabilitiesAccount),
		}, nil
	}
	return balanceSheet{}, lastErr
}

// fetchDividend returns the first year with an ordinary-share cash dividend per
// share. The yield is read from the same year.
func (f *FiscalFetcher) fetchDividend(ctx context.Context, id string, years []int) (*models.Figure, *models.Figure, error) {
	var lastErr error
	for _, year := range years {
		cctx, cancel := f.upstreamCtx(ctx)
		items, err := f.provider.Dividends(cctx, id, year)
		cancel()
		if err != nil {
			lastErr = err
			f.stepFailed("dividend", id, Step{Schema: "dividend", Year: year}, err)
			continue
		}
		row, ok := findDividend(items, dividendPerShareLabel)
		if !ok {
			continue
		}
		amount, ok := util.ParseAmount(row.Value)
		if !ok {
			continue
		}
		f.metrics.RecordFallbackStep("dividend", "dividend")
		dps := &models.Figure{Value: amount, FiscalYear: year, Source: "dividend"}

		var yield *models.Figure
		if yrow, ok := findDividend(items, dividendYieldLabel); ok {
			if pct, ok := util.ParsePercent(yrow.Value); ok {
				yield = &models.Figure{Value: pct, FiscalYear: year, Source: "dividend"}
			}
		}
		return dps, yield, nil
	}
	return nil, nil, lastErr
}

func (f *FiscalFetcher) load(ctx context.Context, id string, step Step) ([]models.FiscalLineItem, error) {
	ctx, cancel := f.upstreamCtx(ctx)
	defer cancel()
	switch step.Schema {
	case SchemaStandardConsolidated:
		return f.provider.StandardAccounts(ctx, id, step.Year, models.ScopeConsolidated)
	case SchemaStandardSeparate:
		return f.provider.StandardAccounts(ctx, id, step.Year, models.ScopeSeparate)
	default:
		return f.provider.LegacyAccounts(ctx, id, step.Year)
	}
}

func (f *FiscalFetcher) stepFailed(chain, id string, step Step, err error) {
	f.metrics.RecordUpstreamError("disclosure", string(step.Schema))
	f.logger.Warn("disclosure step failed",
		applogger.String("chain", chain),
		applogger.String("registry_id", id),
		applogger.String("step", step.String()),
		applogger.Error(err),
	)
}

func (f *FiscalFetcher) upstreamCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.cfg.UpstreamTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.cfg.UpstreamTimeout)
}

// stepMemo shares provider responses between the chains of one fetch.
// It lives only as long as the FetchFacts call that created it.
type stepMemo struct {
	mu      sync.Mutex
	entries map[Step]*stepEntry
}

type stepEntry struct {
	once  sync.Once
	items []models.FiscalLineItem
	err   error
}

func newStepMemo() *stepMemo {
	return &stepMemo{entries: make(map[Step]*stepEntry)}
}

func (m *stepMemo) get(step Step, load func() ([]models.FiscalLineItem, error)) ([]models.FiscalLineItem, error) {
	m.mu.Lock()
	e, ok := m.entries[step]
	if !ok {
		e = &stepEntry{}
		m.entries[step] = e
	}
	m.mu.Unlock()

	e.once.Do(func() { e.items, e.err = load() })
	return e.items, e.err
}
