package repository

import (
	"testing"

	"FinSignal/internal/domain/models"
)

const tickersJSON = `[
	{"market":"KOSPI","ticker":"005930","name":"삼성전자","corp_code":"00126380"},
	{"market":"NASDAQ","ticker":"aapl","name":"Apple Inc. - Common Stock"},
	{"market":"KOSDAQ","ticker":"005930","name":"duplicate","corp_code":"x"},
	{"market":"NYSE","ticker":"BRK-B","name":"Berkshire Hathaway Inc. - Class B - New"}
]`

func TestParseTickerTable(t *testing.T) {
	table, err := ParseTickerTable([]byte(tickersJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("len = %d, want 3", table.Len())
	}

	s, ok := table.Lookup(" 005930 ")
	if !ok {
		t.Fatalf("005930 not found")
	}
	if s.DisplayName != "삼성전자" || s.Venue != models.VenueKOSPI || s.DisclosureRegistryID != "00126380" {
		t.Fatalf("first row must win: %+v", s)
	}

	s, ok = table.Lookup("AAPL")
	if !ok || s.DisplayName != "Apple Inc." || s.DisclosureRegistryID != "" {
		t.Fatalf("aapl: %+v", s)
	}

	s, _ = table.Lookup("brk-b")
	if s.DisplayName != "Berkshire Hathaway Inc." {
		t.Fatalf("name must be cut at first separator: %q", s.DisplayName)
	}

	if _, ok := table.Lookup("NOPE"); ok {
		t.Fatalf("unexpected hit")
	}
}

func TestParseTickerTableInvalid(t *testing.T) {
	if _, err := ParseTickerTable([]byte("{")); err == nil {
		t.Fatalf("expected error")
	}
}
