// Package yahoo adapts the Yahoo Finance quote and chart endpoints to the
// QuoteProvider interface.
package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pmetrics "FinSignal/internal/service/metrics"
	"FinSignal/pkg/util"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
)

type equityFunc func(symbol string) (*finance.Equity, error)

type barsFunc func(symbol string, from, to time.Time) ([]*finance.ChartBar, error)

// Client is a QuoteProvider backed by finance-go. The SDK is blocking and has
// no context support, so every call runs in its own goroutine and is abandoned
// when ctx ends.
type Client struct {
	equity equityFunc
	bars   barsFunc
}

// Option configures Client.
type Option func(*Client)

// WithEquityFunc replaces the equity lookup.
func WithEquityFunc(fn func(symbol string) (*finance.Equity, error)) Option {
	return func(c *Client) {
		c.equity = fn
	}
}

// WithBarsFunc replaces the daily bar lookup.
func WithBarsFunc(fn func(symbol string, from, to time.Time) ([]*finance.ChartBar, error)) Option {
	return func(c *Client) {
		c.bars = fn
	}
}

// New creates a Yahoo quote provider.
func New(opts ...Option) *Client {
	c := &Client{equity: equity.Get, bars: dailyBars}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domrepo.QuoteProvider = (*Client)(nil)

func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	start := time.Now()
	defer func() { pmetrics.QuoteLatency.WithLabelValues("quote").Observe(time.Since(start).Seconds()) }()

	type result struct {
		eq  *finance.Equity
		err error
	}
	ch := make(chan result, 1)
	go func() {
		eq, err := c.equity(symbol)
		ch <- result{eq, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("quote %s: %w", symbol, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return nil, classify(symbol, "quote", r.err)
	}
	if r.eq == nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, models.ErrSymbolNotFound)
	}

	q := &models.Quote{
		Symbol:        r.eq.Symbol,
		Name:          r.eq.ShortName,
		Currency:      r.eq.CurrencyID,
		Price:         r.eq.RegularMarketPrice,
		Change:        r.eq.RegularMarketChange,
		ChangePercent: r.eq.RegularMarketChangePercent,
	}
	if r.eq.MarketCap > 0 {
		mc := float64(r.eq.MarketCap)
		q.MarketCap = &mc
	}
	return q, nil
}

func (c *Client) Historical(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error) {
	start := time.Now()
	defer func() { pmetrics.QuoteLatency.WithLabelValues("historical").Observe(time.Since(start).Seconds()) }()

	type result struct {
		bars []*finance.ChartBar
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		bars, err := c.bars(symbol, from, to)
		ch <- result{bars, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("historical %s: %w", symbol, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return nil, classify(symbol, "historical", r.err)
	}

	points := make([]models.PricePoint, 0, len(r.bars))
	for _, b := range r.bars {
		if b == nil {
			continue
		}
		price, _ := b.Close.Float64()
		points = append(points, models.PricePoint{
			Date:  util.FormatUnixDate(int64(b.Timestamp)),
			Close: price,
		})
	}
	return points, nil
}

func dailyBars(symbol string, from, to time.Time) ([]*finance.ChartBar, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: datetime.OneDay,
	})
	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// classify maps the SDK's "not found" family of errors onto ErrSymbolNotFound.
func classify(symbol, op string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no data found") {
		return fmt.Errorf("%s %s: %w: %v", op, symbol, models.ErrSymbolNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", op, symbol, err)
}
