package api

import (
	"errors"

	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
)

// appError maps domain errors to the HTTP envelope.
func appError(err error) *xhttp.AppError {
	var pv *models.PresetValidationError
	switch {
	case errors.As(err, &pv):
		return xhttp.NewAppError("ERR_INVALID_PRESET", "preset", "invalid preset", 400).
			WithParam("violations", pv.Violations).
			WithError(err)
	case errors.Is(err, models.ErrPresetNotFound):
		return xhttp.NotFoundError("preset not found").WithError(err)
	case errors.Is(err, models.ErrDefaultPresetLocked):
		return xhttp.BadRequestError("default preset cannot be deleted").WithError(err)
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError("ticker not found").WithError(err)
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return xhttp.UnavailableError("temporarily unavailable, please retry later").WithError(err)
	case errors.Is(err, models.ErrHistoryDisabled):
		return xhttp.ServiceDisabledError("evaluation history is not enabled").WithError(err)
	}
	return xhttp.InternalError("something went wrong").WithError(err)
}
