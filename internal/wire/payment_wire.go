package wire

import (
	"travel-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// POST /api/payments/callback - Gateway webhook, signature-checked
	r.Post("/api/payments/callback", paymentHandler.Callback)
}
