package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/fundamentals"
	"FinSignal/internal/services/signal"
	applogger "FinSignal/pkg/logger"
)

// AggregatorConfig holds the aggregator settings.
type AggregatorConfig struct {
	RequestTimeout time.Duration
	MarketCapBands map[string][]float64
}

// Aggregator produces one Snapshot per evaluation. It holds no per-request
// state and is safe for concurrent use.
type Aggregator struct {
	resolver *Resolver
	market   *MarketFetcher
	fiscal   *FiscalFetcher
	cfg      AggregatorConfig
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	now      func() time.Time
}

func NewAggregator(r *Resolver, m *MarketFetcher, f *FiscalFetcher, cfg AggregatorConfig, metrics domrepo.Metrics, l *applogger.Logger) *Aggregator {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 20 * time.Second
	}
	return &Aggregator{resolver: r, market: m, fiscal: f, cfg: cfg, metrics: metrics, logger: l, now: time.Now}
}

// EvaluateParams selects what to evaluate. Preset may be nil, in which case no
// signals are computed. AsOfYear defaults to the current calendar year.
type EvaluateParams struct {
	Ticker   string
	Preset   *models.ThresholdPreset
	AsOfYear int
}

// Evaluate resolves the ticker, fetches market and fiscal data concurrently,
// derives metrics and classifies them. Only an unknown ticker or a failure of
// both market calls is fatal; any other gap is a nil field plus an entry in
// Snapshot.Errors.
func (a *Aggregator) Evaluate(ctx context.Context, p EvaluateParams) (*models.Snapshot, error) {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("evaluate", time.Since(start).Seconds()) }()

	security, err := a.resolver.Resolve(p.Ticker)
	if err != nil {
		a.metrics.RecordEvaluation("not_found")
		return nil, err
	}

	now := a.now()
	asOf := p.AsOfYear
	if asOf == 0 {
		asOf = now.Year()
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	type item struct {
		name   string
		market *models.MarketSnapshot
		facts  models.FiscalFacts
		errs   map[string]string
		err    error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		m, err := a.market.Fetch(ctx, security)
		ch <- item{name: "market", market: m, err: err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		facts, errs := a.fiscal.FetchFacts(ctx, security.DisclosureRegistryID, asOf)
		ch <- item{name: "fiscal", facts: facts, errs: errs}
	}()

	go func() { wg.Wait(); close(ch) }()

	res := &models.Snapshot{
		Security:    security,
		EvaluatedAt: now.UTC(),
		Errors:      map[string]string{},
	}
	var market *models.MarketSnapshot
	var marketErr error
	for it := range ch {
		switch it.name {
		case "market":
			market, marketErr = it.market, it.err
		case "fiscal":
			res.Fiscal = it.facts
			for k, v := range it.errs {
				res.Errors[k] = v
			}
		}
	}

	if market == nil {
		if marketErr == nil {
			marketErr = models.ErrUpstreamUnavailable
		}
		if errors.Is(marketErr, models.ErrNotFound) {
			a.metrics.RecordEvaluation("not_found")
		} else {
			a.metrics.RecordEvaluation("unavailable")
		}
		return nil, marketErr
	}
	res.Market = *market
	for k, v := range market.Errors {
		res.Errors[k] = v
	}

	res.Metrics = fundamentals.Derive(res.Fiscal, market, a.cfg.MarketCapBands, asOf)
	if p.Preset != nil {
		res.PresetName = p.Preset.Name
		res.Signals = signal.Evaluate(res.Metrics, *p.Preset)
		for kind, sev := range res.Signals {
			a.metrics.RecordSeverity(string(kind), string(sev))
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
		a.metrics.RecordEvaluation("ok")
	} else {
		a.metrics.RecordEvaluation("partial")
		a.logger.Debug("partial evaluation",
			applogger.String("ticker", security.Ticker),
			applogger.Any("errors", res.Errors),
		)
	}
	return res, nil
}
