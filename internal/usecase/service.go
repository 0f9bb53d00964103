package usecase

import (
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"
	"travel-booking/internal/payment"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	Package      PackageService
	Departure    DepartureService
	Availability AvailabilityService
	Booking      BookingService
	Reconcile    ReconcileService
	Invoice      InvoiceService
	Admin        AdminService
}

func NewService(
	repo *repository.Repository,
	gateway payment.Gateway,
	scheduler ExpiryScheduler,
	publisher notify.Publisher,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	booking := NewBookingService(repo, gateway, scheduler, publisher, config, log)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		Package:      NewPackageService(repo, log),
		Departure:    NewDepartureService(repo, log),
		Availability: NewAvailabilityService(repo, log),
		Booking:      booking,
		Reconcile:    NewReconcileService(repo, gateway, publisher, config.Stripe.Currency, log),
		Invoice:      NewInvoiceService(repo, config.Company, log),
		Admin:        NewAdminService(repo, booking, publisher, log),
	}
}
