package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"
)

// SymbolRule turns a security into the quote provider's symbol.
type SymbolRule func(s models.SecurityIdentity) string

// VenueSuffixRule appends the configured suffix for a venue, e.g. ".KS" for
// KOSPI. Venues without an entry use the bare ticker.
func VenueSuffixRule(suffixes map[string]string) SymbolRule {
	return func(s models.SecurityIdentity) string {
		return s.Ticker + suffixes[string(s.Venue)]
	}
}

// MarketFetcherConfig holds the market fetcher settings.
type MarketFetcherConfig struct {
	HistoryDays     int
	UpstreamTimeout time.Duration
}

// MarketFetcher gets the current quote and the trailing daily closes.
type MarketFetcher struct {
	quotes  domrepo.QuoteProvider
	symbol  SymbolRule
	cfg     MarketFetcherConfig
	metrics domrepo.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

func NewMarketFetcher(quotes domrepo.QuoteProvider, rule SymbolRule, cfg MarketFetcherConfig, m domrepo.Metrics, l *applogger.Logger) *MarketFetcher {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 30
	}
	return &MarketFetcher{quotes: quotes, symbol: rule, cfg: cfg, metrics: m, logger: l, now: time.Now}
}

// Fetch runs the quote and historical calls concurrently. If one leg fails the
// partial snapshot is returned with an error wrapping ErrUpstreamUnavailable.
// If both fail the snapshot is nil and the error wraps ErrNotFound when the
// provider did not know the symbol, ErrUpstreamUnavailable otherwise.
func (f *MarketFetcher) Fetch(ctx context.Context, s models.SecurityIdentity) (*models.MarketSnapshot, error) {
	symbol := f.symbol(s)
	from, to := util.TrailingWindow(f.now(), f.cfg.HistoryDays)

	var (
		wg       sync.WaitGroup
		quote    *models.Quote
		series   []models.PricePoint
		quoteErr error
		histErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cctx, cancel := f.upstreamCtx(ctx)
		defer cancel()
		start := time.Now()
		quote, quoteErr = f.quotes.Quote(cctx, symbol)
		f.metrics.RecordLatency("quote", time.Since(start).Seconds())
	}()
	go func() {
		defer wg.Done()
		cctx, cancel := f.upstreamCtx(ctx)
		defer cancel()
		start := time.Now()
		series, histErr = f.quotes.Historical(cctx, symbol, from, to)
		f.metrics.RecordLatency("historical", time.Since(start).Seconds())
	}()
	wg.Wait()

	if quoteErr != nil {
		f.metrics.RecordUpstreamError("quote", "quote")
		f.logger.Warn("quote failed", applogger.String("symbol", symbol), applogger.Error(quoteErr))
	}
	if histErr != nil {
		f.metrics.RecordUpstreamError("quote", "historical")
		f.logger.Warn("historical failed", applogger.String("symbol", symbol), applogger.Error(histErr))
	}

	if quoteErr != nil && histErr != nil {
		if errors.Is(quoteErr, models.ErrSymbolNotFound) || errors.Is(histErr, models.ErrSymbolNotFound) {
			return nil, fmt.Errorf("market %s: %w", symbol, models.ErrNotFound)
		}
		return nil, fmt.Errorf("market %s: %w: %v", symbol, models.ErrUpstreamUnavailable, quoteErr)
	}

	snap := &models.MarketSnapshot{Symbol: symbol, PriceSeries: []models.PricePoint{}}
	if quote != nil {
		price, change, rate := quote.Price, quote.Change, quote.ChangePercent
		snap.Currency = quote.Currency
		snap.Price = &price
		snap.ChangeAmount = &change
		snap.ChangeRatePercent = &rate
		if quote.MarketCap != nil {
			mc := *quote.MarketCap
			snap.MarketCapitalization = &mc
		}
	}
	if series != nil {
		snap.PriceSeries = series
	}

	var legErr error
	if quoteErr != nil {
		snap.Errors = map[string]string{"quote": quoteErr.Error()}
		legErr = fmt.Errorf("quote %s: %w: %v", symbol, models.ErrUpstreamUnavailable, quoteErr)
	}
	if histErr != nil {
		snap.Errors = map[string]string{"historical": histErr.Error()}
		legErr = fmt.Errorf("historical %s: %w: %v", symbol, models.ErrUpstreamUnavailable, histErr)
	}
	return snap, legErr
}

func (f *MarketFetcher) upstreamCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.cfg.UpstreamTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.cfg.UpstreamTimeout)
}
