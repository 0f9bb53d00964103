package wire

import (
	"travel-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCatalog(r chi.Router, catalogHandler *adaptor.CatalogHandler) {
	// GET /api/packages - Browse active packages
	r.Get("/api/packages", catalogHandler.ListPackages)

	// GET /api/packages/{id} - Package detail
	r.Get("/api/packages/{id}", catalogHandler.GetPackage)

	// GET /api/packages/{id}/departures - Departures with remaining seats
	r.Get("/api/packages/{id}/departures", catalogHandler.ListDepartures)

	// GET /api/availability - Availability probe for a party size
	r.Get("/api/availability", catalogHandler.CheckAvailability)
}
