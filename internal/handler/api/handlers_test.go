package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/service/ratelimit"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"
)

type fakeEvaluator struct {
	lastUser string
	lastReq  models.EvaluateRequest
	err      error
}

func (f *fakeEvaluator) Evaluate(_ context.Context, userID string, req models.EvaluateRequest) (*models.Snapshot, error) {
	f.lastUser, f.lastReq = userID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Snapshot{
		RequestID: "req-1",
		Security:  models.SecurityIdentity{Ticker: req.Ticker, Venue: models.VenueKOSPI},
		Signals:   models.SignalSnapshot{models.MetricPER: models.SeverityGreen},
	}, nil
}

type fakeSearcher struct{}

func (fakeSearcher) Search(keyword string, page int) models.SearchPage {
	return models.SearchPage{
		Rows:       []models.SecurityIdentity{{Ticker: "005930", DisplayName: keyword}},
		Total:      1,
		Page:       page,
		TotalPages: 1,
	}
}

type fakeHistory struct {
	err error
}

func (f fakeHistory) History(_ context.Context, ticker string, limit int) ([]models.EvaluationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.EvaluationRecord, 0, limit)
	for i := 0; i < limit && i < 2; i++ {
		out = append(out, models.EvaluationRecord{RequestID: fmt.Sprintf("r%d", i), Ticker: ticker})
	}
	return out, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h xhttp.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func errorCode(t *testing.T, env envelope) string {
	t.Helper()
	var errs []xhttp.AppError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.NotEmpty(t, errs)
	return errs[0].Code
}

func TestEvaluateUsesPathQueryAndUser(t *testing.T) {
	ev := &fakeEvaluator{}
	h := NewStocksEchoHandler(xlogger.Nop(), ev, fakeSearcher{}, fakeHistory{})

	rec, env := serve(t, h, http.MethodGet, "/api/stocks/005930?preset=growth&year=2024", "", map[string]string{xhttp.HeaderUserID: "u1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", ev.lastUser)
	assert.Equal(t, models.EvaluateRequest{Ticker: "005930", Preset: "growth", Year: 2024}, ev.lastReq)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, models.SeverityGreen, snap.Signals[models.MetricPER])
}

func TestEvaluateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("resolve: %w", models.ErrNotFound), http.StatusNotFound, "ERR_NOT_FOUND"},
		{"upstream", fmt.Errorf("quote: %w", models.ErrUpstreamUnavailable), http.StatusInternalServerError, "ERR_UPSTREAM_UNAVAILABLE"},
		{"preset", fmt.Errorf("resolve preset: %w", models.ErrPresetNotFound), http.StatusNotFound, "ERR_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewStocksEchoHandler(xlogger.Nop(), &fakeEvaluator{err: tc.err}, fakeSearcher{}, fakeHistory{})
			rec, env := serve(t, h, http.MethodGet, "/api/stocks/XXXX", "", nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, env))
		})
	}
}

func TestEvaluateRejectsBadYear(t *testing.T) {
	ev := &fakeEvaluator{}
	h := NewStocksEchoHandler(xlogger.Nop(), ev, fakeSearcher{}, fakeHistory{})

	rec, _ := serve(t, h, http.MethodGet, "/api/stocks/005930?year=1990", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ev.lastReq.Ticker)
}

func TestSearchDefaultsPage(t *testing.T) {
	h := NewStocksEchoHandler(xlogger.Nop(), &fakeEvaluator{}, fakeSearcher{}, fakeHistory{})

	rec, env := serve(t, h, http.MethodGet, "/api/stocks/search?q=%EC%82%BC%EC%84%B1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.SearchPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "삼성", page.Rows[0].DisplayName)

	rec, _ = serve(t, h, http.MethodGet, "/api/stocks/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	h := NewStocksEchoHandler(xlogger.Nop(), &fakeEvaluator{}, fakeSearcher{}, fakeHistory{})
	rec, env := serve(t, h, http.MethodGet, "/api/stocks/005930/history?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows  []models.EvaluationRecord `json:"rows"`
		Total int64                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, "005930", list.Rows[0].Ticker)

	disabled := NewStocksEchoHandler(xlogger.Nop(), &fakeEvaluator{}, fakeSearcher{}, fakeHistory{err: models.ErrHistoryDisabled})
	rec, env = serve(t, disabled, http.MethodGet, "/api/stocks/005930/history", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ERR_DISABLED", errorCode(t, env))
}

type fakePresets struct {
	saved     []models.ThresholdPreset
	deleted   string
	def       string
	saveErr   error
	deleteErr error
}

func (f *fakePresets) List(context.Context, string) ([]models.ThresholdPreset, string, error) {
	return f.saved, f.def, nil
}

func (f *fakePresets) Get(_ context.Context, _, name string) (*models.ThresholdPreset, error) {
	for _, p := range f.saved {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("get %s: %w", name, models.ErrPresetNotFound)
}

func (f *fakePresets) Save(_ context.Context, _ string, p models.ThresholdPreset) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakePresets) Delete(_ context.Context, _, name string) error {
	f.deleted = name
	return f.deleteErr
}

func (f *fakePresets) SetDefault(_ context.Context, _, name string) error {
	f.def = name
	return nil
}

func TestPresetRoutes(t *testing.T) {
	store := &fakePresets{}
	h := NewPresetsEchoHandler(xlogger.Nop(), store)

	body := `{"presetName":"value","description":"value investing","per":{"warning":25,"danger":15,"caution":8}}`
	rec, _ := serve(t, h, http.MethodPut, "/api/presets", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 15.0, store.saved[0].PER.Danger)

	rec, _ = serve(t, h, http.MethodPost, "/api/presets/default", `{"presetName":"value"}`, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "value", store.def)

	rec, env := serve(t, h, http.MethodGet, "/api/presets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list presetList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, "value", list.DefaultPreset)
	assert.Len(t, list.Presets, 1)

	rec, env = serve(t, h, http.MethodGet, "/api/presets/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ERR_NOT_FOUND", errorCode(t, env))
}

func TestPresetErrors(t *testing.T) {
	store := &fakePresets{
		saveErr:   &models.PresetValidationError{Violations: []string{"per: warning must be greater than danger"}},
		deleteErr: fmt.Errorf("delete: %w", models.ErrDefaultPresetLocked),
	}
	h := NewPresetsEchoHandler(xlogger.Nop(), store)

	rec, env := serve(t, h, http.MethodPut, "/api/presets", `{"presetName":"x","description":"y"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []xhttp.AppError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	assert.Equal(t, "ERR_INVALID_PRESET", errs[0].Code)
	assert.Contains(t, fmt.Sprint(errs[0].Params["violations"]), "per: warning must be greater than danger")

	rec, _ = serve(t, h, http.MethodDelete, "/api/presets/x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "x", store.deleted)

	rec, _ = serve(t, h, http.MethodPut, "/api/presets", `{"presetName":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAsker struct {
	calls int
}

func (f *fakeAsker) Ask(_ context.Context, _ string, req models.ChatRequest) (string, error) {
	f.calls++
	return "PER은 12.5배입니다.", nil
}

func TestChatAnswersAndRateLimits(t *testing.T) {
	asker := &fakeAsker{}
	limiter := ratelimit.New(1, 0.5)
	h := NewChatEchoHandler(xlogger.Nop(), asker, limiter)
	headers := map[string]string{xhttp.HeaderUserID: "u1"}
	body := `{"message":"PER 알려줘","ticker":"005930"}`

	rec, env := serve(t, h, http.MethodPost, "/api/stock-chat", body, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	var ans chatAnswer
	require.NoError(t, json.Unmarshal(env.Data, &ans))
	assert.Equal(t, "005930", ans.Ticker)
	assert.Contains(t, ans.Answer, "12.5배")

	rec, env = serve(t, h, http.MethodPost, "/api/stock-chat", body, headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "ERR_RATE_LIMITED", errorCode(t, env))
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, asker.calls)

	rec, _ = serve(t, h, http.MethodPost, "/api/stock-chat", body, map[string]string{xhttp.HeaderUserID: "u2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatValidatesBody(t *testing.T) {
	h := NewChatEchoHandler(xlogger.Nop(), &fakeAsker{}, nil)
	rec, _ := serve(t, h, http.MethodPost, "/api/stock-chat", `{"message":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppErrorFallsBackToInternal(t *testing.T) {
	ae := appError(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.Equal(t, "ERR_INTERNAL", ae.Code)
}
