package repository

import (
	"context"
	"errors"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
	"FinSignal/pkg/logger"
)

// CachedDisclosureProvider serves repeated filing lookups from a cache.
// Only non-empty results are stored: an empty answer may mean the filing is
// not published yet, and errors are never kept.
type CachedDisclosureProvider struct {
	next   domrepo.DisclosureProvider
	cache  cache.Cache
	ttl    time.Duration
	logger *logger.Logger
}

var _ domrepo.DisclosureProvider = (*CachedDisclosureProvider)(nil)

func NewCachedDisclosureProvider(next domrepo.DisclosureProvider, c cache.Cache, ttl time.Duration, l *logger.Logger) *CachedDisclosureProvider {
	if l == nil {
		l = logger.Nop()
	}
	return &CachedDisclosureProvider{next: next, cache: c, ttl: ttl, logger: l}
}

func (p *CachedDisclosureProvider) StandardAccounts(ctx context.Context, registryID string, year int, scope models.ConsolidationScope) ([]models.FiscalLineItem, error) {
	return readThrough(ctx, p, cache.Key("disclosure", "standard", registryID, year, scope), func() ([]models.FiscalLineItem, error) {
		return p.next.StandardAccounts(ctx, registryID, year, scope)
	})
}

func (p *CachedDisclosureProvider) LegacyAccounts(ctx context.Context, registryID string, year int) ([]models.FiscalLineItem, error) {
	return readThrough(ctx, p, cache.Key("disclosure", "legacy", registryID, year), func() ([]models.FiscalLineItem, error) {
		return p.next.LegacyAccounts(ctx, registryID, year)
	})
}

func (p *CachedDisclosureProvider) Dividends(ctx context.Context, registryID string, year int) ([]models.DividendItem, error) {
	return readThrough(ctx, p, cache.Key("disclosure", "dividends", registryID, year), func() ([]models.DividendItem, error) {
		return p.next.Dividends(ctx, registryID, year)
	})
}

func readThrough[T any](ctx context.Context, p *CachedDisclosureProvider, key string, load func() ([]T, error)) ([]T, error) {
	var out []T
	err := p.cache.Get(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		p.logger.Warn("disclosure cache read failed", logger.String("key", key), logger.Error(err))
	}

	out, err = load()
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := p.cache.Set(ctx, key, out, p.ttl); err != nil {
		p.logger.Warn("disclosure cache write failed", logger.String("key", key), logger.Error(err))
	}
	return out, nil
}
