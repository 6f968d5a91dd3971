package usecase

import (
	"fmt"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/util"
)

// SearchPageSize is the number of rows per search page.
const SearchPageSize = 10

// Resolver maps tickers to security identities using the reference table.
type Resolver struct {
	table domrepo.TickerTable
}

func NewResolver(table domrepo.TickerTable) *Resolver {
	return &Resolver{table: table}
}

// Resolve looks up a ticker. Unknown tickers fail with models.ErrNotFound.
func (r *Resolver) Resolve(ticker string) (models.SecurityIdentity, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	s, ok := r.table.Lookup(t)
	if !ok {
		return models.SecurityIdentity{}, fmt.Errorf("resolve %q: %w", t, models.ErrNotFound)
	}
	return s, nil
}

// Search matches keyword against names and tickers, ignoring whitespace and
// case, and returns one page of results in table order.
func (r *Resolver) Search(keyword string, page int) models.SearchPage {
	if page < 1 {
		page = 1
	}
	needle := util.Compact(keyword)

	var hits []models.SecurityIdentity
	for _, s := range r.table.All() {
		if needle == "" ||
			strings.Contains(util.Compact(s.DisplayName), needle) ||
			strings.Contains(util.Compact(s.Ticker), needle) {
			hits = append(hits, s)
		}
	}

	out := models.SearchPage{
		Rows:       []models.SecurityIdentity{},
		Total:      len(hits),
		Page:       page,
		TotalPages: (len(hits) + SearchPageSize - 1) / SearchPageSize,
	}
	start := (page - 1) * SearchPageSize
	if start >= len(hits) {
		return out
	}
	end := start + SearchPageSize
	if end > len(hits) {
		end = len(hits)
	}
	out.Rows = hits[start:end]
	return out
}
