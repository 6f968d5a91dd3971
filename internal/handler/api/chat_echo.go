package api

import (
	"context"
	"math"
	"strconv"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/service/ratelimit"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Asker answers a question about one stock.
type Asker interface {
	Ask(ctx context.Context, userID string, req models.ChatRequest) (string, error)
}

type chatAnswer struct {
	Ticker string `json:"ticker"`
	Answer string `json:"answer"`
}

type ChatEchoHandler struct {
	logger  *xlogger.Logger
	chat    Asker
	limiter *ratelimit.Limiter
}

// NewChatEchoHandler builds the chat handler. A nil limiter disables rate limiting.
func NewChatEchoHandler(logger *xlogger.Logger, chat Asker, limiter *ratelimit.Limiter) *ChatEchoHandler {
	return &ChatEchoHandler{logger: logger, chat: chat, limiter: limiter}
}

func (h *ChatEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/stock-chat", h.Ask)
}

func (h *ChatEchoHandler) Ask(c echo.Context) error {
	user := xhttp.UserID(c)
	if ok, wait := h.allow(user); !ok {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many questions, slow down"))
	}

	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	answer, err := h.chat.Ask(c.Request().Context(), user, *req)
	if err != nil {
		h.logger.Warn("stock chat failed", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, chatAnswer{Ticker: req.Ticker, Answer: answer})
}

func (h *ChatEchoHandler) allow(user string) (bool, time.Duration) {
	if h.limiter == nil {
		return true, 0
	}
	return h.limiter.Take(user)
}
