package dart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:    srv.URL,
		APIKey:     "key",
		Timeout:    2 * time.Second,
		ReportCode: "11011",
	}, nil)
}

func TestStandardAccounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fnlttSinglAcntAll.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("crtfc_key"))
		assert.Equal(t, "00126380", q.Get("corp_code"))
		assert.Equal(t, "2024", q.Get("bsns_year"))
		assert.Equal(t, "11011", q.Get("reprt_code"))
		assert.Equal(t, "CFS", q.Get("fs_div"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"000","message":"정상","list":[
			{"sj_div":"IS","account_id":"ifrs-full_ProfitLoss","account_nm":"당기순이익","thstrm_amount":"1,200"},
			{"sj_div":"BS","account_id":"ifrs-full_Liabilities","account_nm":"부채총계","thstrm_amount":"(300)"},
			{"sj_div":"BS","account_id":"ifrs-full_Equity","account_nm":"자본총계","thstrm_amount":"-"}
		]}`))
	})

	items, err := c.StandardAccounts(context.Background(), "00126380", 2024, models.ScopeConsolidated)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ifrs-full_ProfitLoss", items[0].AccountID)
	assert.Equal(t, models.StatementIncome, items[0].Statement)
	assert.Equal(t, models.ScopeConsolidated, items[0].Scope)
	assert.Equal(t, "1200", items[0].Amount.String())
	assert.Equal(t, "-300", items[1].Amount.String())
}

func TestLegacyAccountsKeepsScope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fnlttSinglAcnt.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"000","list":[
			{"fs_div":"OFS","sj_div":"IS","account_nm":"당기순이익","thstrm_amount":"10"},
			{"fs_div":"CFS","sj_div":"IS","account_nm":"당기순이익","thstrm_amount":"12"}
		]}`))
	})

	items, err := c.LegacyAccounts(context.Background(), "x", 2023)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ScopeSeparate, items[0].Scope)
	assert.Equal(t, models.ScopeConsolidated, items[1].Scope)
	assert.Equal(t, 2023, items[1].FiscalYear)
}

func TestNoDataIsEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"013","message":"조회된 데이타가 없습니다."}`))
	})

	items, err := c.Dividends(context.Background(), "x", 2024)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProviderErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"020","message":"요청 제한을 초과하였습니다."}`))
	})

	_, err := c.StandardAccounts(context.Background(), "x", 2024, models.ScopeSeparate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "020")
}

func TestDividends(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alotMatter.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"000","list":[
			{"se":"주당 현금배당금(원)","stock_knd":"보통주","thstrm":" 1,444 "},
			{"se":"현금배당수익률(%)","stock_knd":"보통주","thstrm":"2.7"}
		]}`))
	})

	items, err := c.Dividends(context.Background(), "x", 2024)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.DividendItem{Category: "주당 현금배당금(원)", StockKind: "보통주", FiscalYear: 2024, Value: "1,444"}, items[0])
}

func TestServerErrorIsSoftFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Dividends(context.Background(), "x", 2024)
	require.Error(t, err)
}
