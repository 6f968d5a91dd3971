package api

import (
	"context"

	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PresetManager is the preset use case as seen by HTTP.
type PresetManager interface {
	List(ctx context.Context, userID string) ([]models.ThresholdPreset, string, error)
	Get(ctx context.Context, userID, name string) (*models.ThresholdPreset, error)
	Save(ctx context.Context, userID string, p models.ThresholdPreset) error
	Delete(ctx context.Context, userID, name string) error
	SetDefault(ctx context.Context, userID, name string) error
}

type presetList struct {
	Presets       []models.ThresholdPreset `json:"presets"`
	DefaultPreset string                   `json:"defaultPreset"`
}

type PresetsEchoHandler struct {
	logger  *xlogger.Logger
	presets PresetManager
}

func NewPresetsEchoHandler(logger *xlogger.Logger, presets PresetManager) *PresetsEchoHandler {
	return &PresetsEchoHandler{logger: logger, presets: presets}
}

func (h *PresetsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/presets")
	g.GET("", h.List)
	g.PUT("", h.Save)
	g.POST("/default", h.SetDefault)
	g.GET("/:name", h.Get)
	g.DELETE("/:name", h.Delete)
}

func (h *PresetsEchoHandler) List(c echo.Context) error {
	list, def, err := h.presets.List(c.Request().Context(), xhttp.UserID(c))
	if err != nil {
		h.logger.Error("list presets failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	if list == nil {
		list = []models.ThresholdPreset{}
	}
	return xhttp.SuccessResponse(c, presetList{Presets: list, DefaultPreset: def})
}

func (h *PresetsEchoHandler) Get(c echo.Context) error {
	req := &models.PresetNameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := h.presets.Get(c.Request().Context(), xhttp.UserID(c), req.Name)
	if err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, p)
}

// Save creates or replaces a preset. Ordering rules are checked by the use case
// so every violation is reported at once.
func (h *PresetsEchoHandler) Save(c echo.Context) error {
	var p models.ThresholdPreset
	if err := c.Bind(&p); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: "ERR_BIND", Message: "malformed preset body"}})
	}
	if err := h.presets.Save(c.Request().Context(), xhttp.UserID(c), p); err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *PresetsEchoHandler) Delete(c echo.Context) error {
	req := &models.PresetNameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.presets.Delete(c.Request().Context(), xhttp.UserID(c), req.Name); err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.NoContentResponse(c)
}

func (h *PresetsEchoHandler) SetDefault(c echo.Context) error {
	req := &models.DefaultPresetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.presets.SetDefault(c.Request().Context(), xhttp.UserID(c), req.PresetName); err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.NoContentResponse(c)
}
