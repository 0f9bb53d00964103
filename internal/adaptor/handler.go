package adaptor

import (
	"travel-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Catalog: NewCatalogHandler(service.Package, service.Departure, service.Availability, log),
		Booking: NewBookingHandler(service.Booking, service.Invoice, log),
		Payment: NewPaymentHandler(service.Reconcile, log),
		Admin:   NewAdminHandler(service.Admin, service.Package, service.Departure, log),
	}
}
