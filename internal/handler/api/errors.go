package api

import (
	"errors"
	"net/http"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/repository"
	"RsiWatch/internal/usecase"
	xhttp "RsiWatch/pkg/http"
)

// appError maps domain failures onto transport errors.
func appError(err error) error {
	switch {
	case errors.Is(err, models.ErrResolution):
		return xhttp.NewAppError("ERR_UNKNOWN_SYMBOL", "query", "symbol could not be resolved", http.StatusBadRequest).WithError(err)
	case errors.Is(err, repository.ErrInvalidSymbol):
		return xhttp.BadRequestError("symbol is not valid").WithError(err)
	case errors.Is(err, usecase.ErrCycleFailed):
		return xhttp.ServiceUnavailableError("monitoring cycle failed, retry later").WithError(err)
	case errors.Is(err, usecase.ErrCycleSuperseded):
		return xhttp.NewAppError("ERR_SUPERSEDED", "", "monitoring cycle was superseded by a newer one", http.StatusConflict).WithError(err)
	case errors.Is(err, models.ErrPersistence):
		return xhttp.InternalError("storage unavailable").WithError(err)
	default:
		return err
	}
}
