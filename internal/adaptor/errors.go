package adaptor

import (
	"errors"
	"net/http"

	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps the service error taxonomy onto HTTP.
// Inventory exhaustion and state conflicts are 409 so clients know to
// re-read; unavailability is 503 so they know to retry.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var invErr *usecase.InventoryError
	var valErr *usecase.ValidationError

	switch {
	case errors.As(err, &invErr):
		log.Info(operation+" rejected, inventory exhausted", zap.Int("seats_left", invErr.Remaining))
		utils.ResponseConflict(w, err.Error(), map[string]int{"seats_left": invErr.Remaining})

	case errors.As(err, &valErr):
		log.Warn(operation+" validation failed", zap.Any("errors", valErr.Fields))
		utils.ResponseBadRequest(w, "Validation failed", valErr.Fields)

	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn(operation+" rejected, invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed, not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation + " rejected, invalid credentials")
		utils.ResponseUnauthorized(w, "Invalid email or password")

	case errors.Is(err, usecase.ErrStateConflict):
		log.Warn(operation+" rejected, state conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvoiceNotReady):
		log.Warn(operation+" rejected, invoice not ready", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrServiceUnavailable):
		log.Error("Failed to "+operation+", dependency unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable, please retry")

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
