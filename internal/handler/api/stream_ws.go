package api

import (
	"context"
	"net/http"
	"time"

	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxFrame   = 4 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamFrame is what the server sends back for each request frame.
type streamFrame struct {
	Type   string           `json:"type"` // snapshot or error
	Ticker string           `json:"ticker,omitempty"`
	Data   *models.Snapshot `json:"data,omitempty"`
	Error  interface{}      `json:"error,omitempty"`
}

// StreamHandler evaluates tickers sent over a WebSocket. Frames are handled
// one at a time per connection.
type StreamHandler struct {
	logger *xlogger.Logger
	eval   Evaluator
}

func NewStreamHandler(logger *xlogger.Logger, eval Evaluator) *StreamHandler {
	return &StreamHandler{logger: logger, eval: eval}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/evaluate", h.Serve)
}

func (h *StreamHandler) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	user := xhttp.UserID(c)
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn.SetReadLimit(wsMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	frames := make(chan streamFrame, 1)
	done := make(chan struct{})
	go h.writeLoop(conn, frames, done)
	defer func() {
		close(frames)
		<-done
	}()
	send := func(f streamFrame) bool {
		select {
		case frames <- f:
			return true
		case <-done:
			return false
		}
	}

	for {
		var req models.EvaluateRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read ended", xlogger.Error(err))
			}
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if verr := xhttp.ValidateValue(ctx, &req); verr != nil {
			if !send(streamFrame{Type: "error", Ticker: req.Ticker, Error: verr}) {
				return nil
			}
			continue
		}
		snap, err := h.eval.Evaluate(ctx, user, req)
		if err != nil {
			if !send(streamFrame{Type: "error", Ticker: req.Ticker, Error: appError(err)}) {
				return nil
			}
			continue
		}
		if !send(streamFrame{Type: "snapshot", Ticker: req.Ticker, Data: snap}) {
			return nil
		}
	}
}

// writeLoop owns all writes on conn, including keepalive pings.
func (h *StreamHandler) writeLoop(conn *websocket.Conn, frames <-chan streamFrame, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(f); err != nil {
				h.logger.Debug("websocket write failed", xlogger.Error(err))
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
