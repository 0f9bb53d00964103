package adaptor

import (
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the public browse surface: packages,
// departures and the availability probe.
type CatalogHandler struct {
	packages     usecase.PackageService
	departures   usecase.DepartureService
	availability usecase.AvailabilityService
	log          *zap.Logger
}

func NewCatalogHandler(
	packages usecase.PackageService,
	departures usecase.DepartureService,
	availability usecase.AvailabilityService,
	log *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		packages:     packages,
		departures:   departures,
		availability: availability,
		log:          log.With(zap.String("handler", "catalog")),
	}
}

// ListPackages handles GET /api/packages (public)
func (h *CatalogHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	packages, err := h.packages.ListPackages(r.Context(), req, false)
	if err != nil {
		handleServiceError(w, h.log, err, "list packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// GetPackage handles GET /api/packages/{id} (public)
func (h *CatalogHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")
	if packageID == "" {
		utils.ResponseBadRequest(w, "Package ID is required", nil)
		return
	}

	pkg, err := h.packages.GetPackageByID(r.Context(), packageID)
	if err != nil {
		handleServiceError(w, h.log, err, "get package")
		return
	}

	utils.ResponseSuccess(w, "success", pkg)
}

// ListDepartures handles GET /api/packages/{id}/departures (public)
func (h *CatalogHandler) ListDepartures(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")
	if packageID == "" {
		utils.ResponseBadRequest(w, "Package ID is required", nil)
		return
	}

	departures, err := h.departures.ListByPackage(r.Context(), packageID)
	if err != nil {
		handleServiceError(w, h.log, err, "list departures")
		return
	}

	utils.ResponseSuccess(w, "success", departures)
}

// CheckAvailability handles GET /api/availability (public)
func (h *CatalogHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.AvailabilityRequest{
		DepartureID: query.Get("departure_id"),
		PackageID:   query.Get("package_id"),
		Date:        query.Get("date"),
		Travelers:   utils.ParseInt(query.Get("travelers"), 1),
	}

	availability, err := h.availability.Check(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}
