package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

type tickerRow struct {
	Market   string `json:"market"`
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	CorpCode string `json:"corp_code"`
}

// TickerTable is the in-memory reference table. It is read-only once built.
type TickerTable struct {
	rows  []models.SecurityIdentity
	index map[string]int
}

var _ domrepo.TickerTable = (*TickerTable)(nil)

// LoadTickerTable reads a JSON array of {market, ticker, name, corp_code}.
func LoadTickerTable(path string) (*TickerTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticker table: %w", err)
	}
	return ParseTickerTable(b)
}

// ParseTickerTable builds a table from JSON. Names of foreign listings are cut
// at the first " - " and duplicate tickers keep their first row.
func ParseTickerTable(b []byte) (*TickerTable, error) {
	var rows []tickerRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("parse ticker table: %w", err)
	}
	return newTickerTable(rows), nil
}

// newTickerTable builds a table from rows.
func newTickerTable(rows []tickerRow) *TickerTable {
	t := &TickerTable{index: make(map[string]int, len(rows))}
	for _, r := range rows {
		ticker := normalizeTicker(r.Ticker)
		if ticker == "" {
			continue
		}
		if _, dup := t.index[ticker]; dup {
			continue
		}
		venue := models.Venue(strings.ToUpper(strings.TrimSpace(r.Market)))
		name := strings.TrimSpace(r.Name)
		if venue.Foreign() {
			if head, _, ok := strings.Cut(name, " - "); ok {
				name = strings.TrimSpace(head)
			}
		}
		t.index[ticker] = len(t.rows)
		t.rows = append(t.rows, models.SecurityIdentity{
			Ticker:               ticker,
			DisplayName:          name,
			Venue:                venue,
			DisclosureRegistryID: strings.TrimSpace(r.CorpCode),
		})
	}
	return t
}

func (t *TickerTable) Lookup(ticker string) (models.SecurityIdentity, bool) {
	i, ok := t.index[normalizeTicker(ticker)]
	if !ok {
		return models.SecurityIdentity{}, false
	}
	return t.rows[i], true
}

// All returns the rows in file order. Callers must not modify the slice.
func (t *TickerTable) All() []models.SecurityIdentity {
	return t.rows
}

func (t *TickerTable) Len() int { return len(t.rows) }

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
