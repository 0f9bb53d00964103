package adaptor

import (
	"io"
	"net/http"

	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

// Stripe caps event payloads well below this; anything larger is junk.
const maxCallbackBody = 64 << 10

type PaymentHandler struct {
	service usecase.ReconcileService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.ReconcileService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// Callback handles POST /api/payments/callback, the gateway webhook.
// The raw body is needed intact for signature verification, so no JSON
// decoding happens here.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		h.log.Warn("Failed to read callback body", zap.Error(err))
		utils.ResponseBadRequest(w, "Unreadable payload", nil)
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := h.service.HandleCallback(r.Context(), payload, signature); err != nil {
		handleServiceError(w, h.log, err, "handle payment callback")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
