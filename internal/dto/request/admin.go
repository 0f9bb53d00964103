package request

// BookingFilterRequest is the reconciliation list query: status
// equality plus free text over customer name and order ref.
type BookingFilterRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=pending_payment confirmed cancelled completed"`
	Query  string `json:"q"`
	PaginatedRequest
}

// CancelBookingRequest carries the state the admin view last read so
// the transition can be rejected if the booking moved on since.
type CancelBookingRequest struct {
	CurrentState string `json:"current_state" validate:"required,oneof=pending_payment confirmed"`
	Reason       string `json:"reason" validate:"required,min=3,max=500"`
}
