package wire

import (
	"travel-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/bookings - Reserve seats and open a checkout
	r.Post("/api/bookings", bookingHandler.CreateBooking)

	// GET /api/bookings/{id} - Booking status for the checkout return page
	r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

	// GET /api/bookings/{id}/invoice - Invoice PDF, confirmed bookings only
	r.Get("/api/bookings/{id}/invoice", bookingHandler.DownloadInvoice)
}
