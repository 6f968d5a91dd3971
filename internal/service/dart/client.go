// Package dart is a client for the OpenDART disclosure API.
package dart

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pmetrics "FinSignal/internal/service/metrics"
	"FinSignal/pkg/logger"
	"FinSignal/pkg/util"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	endpointStandard = "/fnlttSinglAcntAll.json"
	endpointLegacy   = "/fnlttSinglAcnt.json"
	endpointDividend = "/alotMatter.json"

	statusOK     = "000"
	statusNoData = "013"
)

// Config holds the client settings.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryCount    int
	RatePerSecond float64
	Burst         int
	ReportCode    string
}

// Client implements DisclosureProvider over HTTP.
type Client struct {
	http       *resty.Client
	limiter    *rate.Limiter
	apiKey     string
	reportCode string
	logger     *logger.Logger
}

var _ domrepo.DisclosureProvider = (*Client)(nil)

// New creates a disclosure client.
func New(cfg Config, l *logger.Logger) *Client {
	if l == nil {
		l = logger.Nop()
	}
	if cfg.ReportCode == "" {
		cfg.ReportCode = "11011"
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:       rc,
		limiter:    rate.NewLimiter(limit, burst),
		apiKey:     cfg.APIKey,
		reportCode: cfg.ReportCode,
		logger:     l,
	}
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type accountRow struct {
	FsDiv        string `json:"fs_div"`
	SjDiv        string `json:"sj_div"`
	AccountID    string `json:"account_id"`
	AccountNm    string `json:"account_nm"`
	ThstrmAmount string `json:"thstrm_amount"`
}

type accountResponse struct {
	envelope
	List []accountRow `json:"list"`
}

type dividendRow struct {
	Se       string `json:"se"`
	StockKnd string `json:"stock_knd"`
	Thstrm   string `json:"thstrm"`
}

type dividendResponse struct {
	envelope
	List []dividendRow `json:"list"`
}

// StandardAccounts fetches the full statement with standard account ids.
func (c *Client) StandardAccounts(ctx context.Context, registryID string, year int, scope models.ConsolidationScope) ([]models.FiscalLineItem, error) {
	var out accountResponse
	params := c.params(registryID, year)
	params["fs_div"] = string(scope)
	ok, err := c.get(ctx, endpointStandard, params, &out, &out.envelope)
	if err != nil || !ok {
		return nil, err
	}

	items := make([]models.FiscalLineItem, 0, len(out.List))
	for _, row := range out.List {
		item, ok := toLineItem(row, year)
		if !ok {
			continue
		}
		item.Scope = scope
		items = append(items, item)
	}
	return items, nil
}

// LegacyAccounts fetches the key-account summary. Rows of both scopes are
// returned, labeled by their fs_div.
func (c *Client) LegacyAccounts(ctx context.Context, registryID string, year int) ([]models.FiscalLineItem, error) {
	var out accountResponse
	ok, err := c.get(ctx, endpointLegacy, c.params(registryID, year), &out, &out.envelope)
	if err != nil || !ok {
		return nil, err
	}

	items := make([]models.FiscalLineItem, 0, len(out.List))
	for _, row := range out.List {
		item, ok := toLineItem(row, year)
		if !ok {
			continue
		}
		item.AccountID = ""
		item.Scope = models.ConsolidationScope(strings.ToUpper(strings.TrimSpace(row.FsDiv)))
		items = append(items, item)
	}
	return items, nil
}

// Dividends fetches the dividend matters of a business report.
func (c *Client) Dividends(ctx context.Context, registryID string, year int) ([]models.DividendItem, error) {
	var out dividendResponse
	ok, err := c.get(ctx, endpointDividend, c.params(registryID, year), &out, &out.envelope)
	if err != nil || !ok {
		return nil, err
	}

	items := make([]models.DividendItem, 0, len(out.List))
	for _, row := range out.List {
		items = append(items, models.DividendItem{
			Category:   strings.TrimSpace(row.Se),
			StockKind:  strings.TrimSpace(row.StockKnd),
			FiscalYear: year,
			Value:      strings.TrimSpace(row.Thstrm),
		})
	}
	return items, nil
}

func (c *Client) params(registryID string, year int) map[string]string {
	return map[string]string{
		"crtfc_key":  c.apiKey,
		"corp_code":  registryID,
		"bsns_year":  strconv.Itoa(year),
		"reprt_code": c.reportCode,
	}
}

// get performs one rate-limited call. It returns false without error when the
// provider reports that no data exists.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, result any, env *envelope) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("dart %s: %w", endpoint, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(endpoint)
	if err != nil {
		pmetrics.DisclosureStatus.WithLabelValues(endpoint, "transport").Inc()
		return false, fmt.Errorf("dart %s: %w", endpoint, err)
	}
	if resp.IsError() {
		pmetrics.DisclosureStatus.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()
		return false, fmt.Errorf("dart %s: http %d", endpoint, resp.StatusCode())
	}

	pmetrics.DisclosureStatus.WithLabelValues(endpoint, env.Status).Inc()
	switch env.Status {
	case statusOK:
		return true, nil
	case statusNoData:
		return false, nil
	}
	c.logger.Debug("disclosure call rejected",
		logger.String("endpoint", endpoint),
		logger.String("corp_code", params["corp_code"]),
		logger.String("year", params["bsns_year"]),
		logger.String("status", env.Status),
		logger.String("message", env.Message),
	)
	return false, fmt.Errorf("dart %s: status %s: %s", endpoint, env.Status, env.Message)
}

func toLineItem(row accountRow, year int) (models.FiscalLineItem, bool) {
	amount, ok := util.ParseAmount(row.ThstrmAmount)
	if !ok {
		return models.FiscalLineItem{}, false
	}
	return models.FiscalLineItem{
		AccountID:   strings.TrimSpace(row.AccountID),
		AccountName: strings.TrimSpace(row.AccountNm),
		Statement:   models.StatementType(strings.ToUpper(strings.TrimSpace(row.SjDiv))),
		FiscalYear:  year,
		Amount:      amount,
	}, true
}
