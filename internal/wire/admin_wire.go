package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, repo *repository.Repository, log *zap.Logger) {
	r.Route("/api/admin", func(r chi.Router) {
		// Session auth plus the staff check on everything below.
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Staff(repo.Staff, log))

		// Package management; the list includes inactive packages.
		r.Get("/packages", adminHandler.ListPackages)
		r.Post("/packages", adminHandler.CreatePackage)
		r.Put("/packages/{id}", adminHandler.UpdatePackage)

		// Departure management
		r.Get("/packages/{id}/departures", adminHandler.ListDepartures)
		r.Post("/departures", adminHandler.CreateDeparture)

		// Booking reconciliation
		r.Get("/bookings", adminHandler.ListBookings)
		r.Get("/bookings/{id}", adminHandler.GetBookingDetail)
		r.Put("/bookings/{id}/confirm", adminHandler.ConfirmBooking)
		r.Put("/bookings/{id}/cancel", adminHandler.CancelBooking)
		r.Delete("/bookings/{id}", adminHandler.DeleteBooking)
	})
}
