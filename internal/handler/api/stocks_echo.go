package api

import (
	"context"
	"net/http"

	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Evaluator runs one evaluation on behalf of a user.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string, req models.EvaluateRequest) (*models.Snapshot, error)
}

// Searcher pages through the ticker table.
type Searcher interface {
	Search(keyword string, page int) models.SearchPage
}

// HistoryReader returns stored evaluations, newest first.
type HistoryReader interface {
	History(ctx context.Context, ticker string, limit int) ([]models.EvaluationRecord, error)
}

// StocksEchoHandler serves search, evaluation and history.
type StocksEchoHandler struct {
	logger  *xlogger.Logger
	eval    Evaluator
	search  Searcher
	history HistoryReader
}

func NewStocksEchoHandler(logger *xlogger.Logger, eval Evaluator, search Searcher, history HistoryReader) *StocksEchoHandler {
	return &StocksEchoHandler{logger: logger, eval: eval, search: search, history: history}
}

func (h *StocksEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stocks")
	g.GET("/search", h.Search)
	g.GET("/:ticker", h.Evaluate)
	g.GET("/:ticker/history", h.History)
}

func (h *StocksEchoHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.search.Search(req.Keyword, req.Page))
}

func (h *StocksEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.eval.Evaluate(c.Request().Context(), xhttp.UserID(c), *req)
	if err != nil {
		h.logger.Warn("evaluate failed", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, snap)
}

func (h *StocksEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.history.History(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		h.logger.Error("history query failed", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	if rows == nil {
		rows = []models.EvaluationRecord{}
	}
	return xhttp.DataResponse(c, http.StatusOK, &xhttp.ListDataResponse{Rows: rows, Total: int64(len(rows))})
}
