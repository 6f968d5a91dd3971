package http

import "github.com/labstack/echo/v4"

// HeaderUserID carries the caller's user id. Authentication happens upstream.
const HeaderUserID = "X-User-ID"

// Handler defines HTTP route registration interface.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// Handlers registers several handlers on one server.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(e *echo.Echo) {
	for _, h := range hs {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}
}

// UserID returns the caller id from the request header, "anonymous" when unset.
func UserID(c echo.Context) string {
	if v := c.Request().Header.Get(HeaderUserID); v != "" {
		return v
	}
	return "anonymous"
}
