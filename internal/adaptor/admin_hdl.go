package adaptor

import (
	"encoding/json"
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler is the staff-only surface: package and departure
// management plus the booking reconciliation view.
type AdminHandler struct {
	admin      usecase.AdminService
	packages   usecase.PackageService
	departures usecase.DepartureService
	log        *zap.Logger
}

func NewAdminHandler(
	admin usecase.AdminService,
	packages usecase.PackageService,
	departures usecase.DepartureService,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		admin:      admin,
		packages:   packages,
		departures: departures,
		log:        log.With(zap.String("handler", "admin")),
	}
}

// CreatePackage handles POST /api/admin/packages
func (h *AdminHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	pkg, err := h.packages.CreatePackage(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create package")
		return
	}

	utils.ResponseCreated(w, "success", pkg)
}

// UpdatePackage handles PUT /api/admin/packages/{id}
func (h *AdminHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")
	if packageID == "" {
		utils.ResponseBadRequest(w, "Package ID is required", nil)
		return
	}

	var req request.UpdatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	pkg, err := h.packages.UpdatePackage(r.Context(), packageID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update package")
		return
	}

	utils.ResponseSuccess(w, "success", pkg)
}

// ListPackages handles GET /api/admin/packages. Unlike the public
// catalog it includes inactive packages.
func (h *AdminHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 20),
	}

	packages, err := h.packages.ListPackages(r.Context(), req, true)
	if err != nil {
		handleServiceError(w, h.log, err, "list packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// ListDepartures handles GET /api/admin/packages/{id}/departures
func (h *AdminHandler) ListDepartures(w http.ResponseWriter, r *http.Request) {
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

// CreateDeparture handles POST /api/admin/departures
func (h *AdminHandler) CreateDeparture(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDepartureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	departure, err := h.departures.CreateDeparture(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create departure")
		return
	}

	utils.ResponseCreated(w, "success", departure)
}

// ListBookings handles GET /api/admin/bookings, the reconciliation
// list with status and free-text filters.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.BookingFilterRequest{
		Status: query.Get("status"),
		Query:  query.Get("q"),
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
	}

	bookings, err := h.admin.ListBookings(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBookingDetail handles GET /api/admin/bookings/{id}
func (h *AdminHandler) GetBookingDetail(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.admin.GetBookingDetail(r.Context(), bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking detail")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ConfirmBooking handles PUT /api/admin/bookings/{id}/confirm
func (h *AdminHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	if err := h.admin.ConfirmBooking(r.Context(), bookingID); err != nil {
		handleServiceError(w, h.log, err, "confirm booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// CancelBooking handles PUT /api/admin/bookings/{id}/cancel
func (h *AdminHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.admin.CancelBooking(r.Context(), bookingID, &req); err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// DeleteBooking handles DELETE /api/admin/bookings/{id}
func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	if err := h.admin.DeleteBooking(r.Context(), bookingID); err != nil {
		handleServiceError(w, h.log, err, "delete booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
