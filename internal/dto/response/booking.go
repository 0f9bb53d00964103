package response

import (
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/payment"
)

type BookingResponse struct {
	ID             string            `json:"id"`
	OrderRef       string            `json:"order_ref"`
	PackageID      string            `json:"package_id"`
	PackageTitle   string            `json:"package_title,omitempty"`
	DepartureID    string            `json:"departure_id"`
	DepartDate     string            `json:"depart_date,omitempty"`
	CustomerName   string            `json:"customer_name"`
	CustomerEmail  string            `json:"customer_email"`
	Travelers      int               `json:"travelers"`
	TotalPrice     int64             `json:"total_price"`
	Discount       int64             `json:"discount"`
	PaymentOption  string            `json:"payment_option"`
	PayableNow     int64             `json:"payable_now"`
	AmountPaid     int64             `json:"amount_paid"`
	BalanceDue     int64             `json:"balance_due"`
	State          string            `json:"state"`
	Discrepancy    bool              `json:"discrepancy"`
	CreatedAt      time.Time         `json:"created_at"`
	Checkout       *payment.Checkout `json:"checkout,omitempty"`
}

type TravelerResponse struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Phone  *string `json:"phone,omitempty"`
}

type PaymentResponse struct {
	GatewayRef string    `json:"gateway_ref"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingDetailResponse is the reconciliation detail view: booking
// plus party and full settlement history.
type BookingDetailResponse struct {
	BookingResponse
	DiscrepancyNote *string            `json:"discrepancy_note,omitempty"`
	SpecialRequest  *string            `json:"special_request,omitempty"`
	CancelReason    *string            `json:"cancel_reason,omitempty"`
	TravelerList    []TravelerResponse `json:"traveler_list"`
	Payments        []PaymentResponse  `json:"payments"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:            booking.ID.String(),
		OrderRef:      booking.OrderRef,
		PackageID:     booking.PackageID.String(),
		DepartureID:   booking.DepartureID.String(),
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		Travelers:     booking.Travelers,
		TotalPrice:    booking.TotalPrice,
		Discount:      booking.Discount,
		PaymentOption: string(booking.PaymentOption),
		PayableNow:    booking.PayableNow,
		AmountPaid:    booking.AmountPaid,
		BalanceDue:    booking.BalanceDue,
		State:         string(booking.State),
		Discrepancy:   booking.Discrepancy,
		CreatedAt:     booking.CreatedAt,
	}
}

func TravelerToResponse(t *entity.Traveler) TravelerResponse {
	return TravelerResponse{
		Name:   t.Name,
		Age:    t.Age,
		Gender: t.Gender,
		Phone:  t.Phone,
	}
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		GatewayRef: p.GatewayRef,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
	}
}
