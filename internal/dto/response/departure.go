package response

import (
	"travel-booking/internal/data/entity"
)

type DepartureResponse struct {
	ID         string `json:"id"`
	PackageID  string `json:"package_id"`
	DepartDate string `json:"depart_date"`
	SeatsTotal int    `json:"seats_total"`
	SeatsLeft  int    `json:"seats_left"`
	Price      int64  `json:"price"`
	Status     string `json:"status"`
}

// DepartureToResponse resolves the effective per-traveler price:
// the departure's override when set, otherwise the package base price.
func DepartureToResponse(departure *entity.Departure, basePrice int64) DepartureResponse {
	price := basePrice
	if departure.PriceOverride != nil {
		price = *departure.PriceOverride
	}

	return DepartureResponse{
		ID:         departure.ID.String(),
		PackageID:  departure.PackageID.String(),
		DepartDate: departure.DepartDate.Format("2006-01-02"),
		SeatsTotal: departure.SeatsTotal,
		SeatsLeft:  departure.SeatsRemaining(),
		Price:      price,
		Status:     string(departure.Status),
	}
}

type AvailabilityResponse struct {
	Available   bool   `json:"available"`
	SeatsLeft   int    `json:"seats_left"`
	DepartureID string `json:"departure_id,omitempty"`
	DepartDate  string `json:"depart_date,omitempty"`
}
