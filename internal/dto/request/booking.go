package request

type TravelerRequest struct {
	Name   string  `json:"name" validate:"required,min=2,max=100"`
	Age    int     `json:"age" validate:"required,gte=1,lte=120"`
	Gender string  `json:"gender" validate:"required,oneof=male female other"`
	Phone  *string `json:"phone,omitempty"`
}

// CreateBookingRequest carries everything needed to reserve seats and
// open a checkout. Either DepartureID or DepartDate must be set; with
// only a date the departure row is created on demand.
type CreateBookingRequest struct {
	PackageID      string            `json:"package_id" validate:"required,uuid4"`
	DepartureID    string            `json:"departure_id,omitempty" validate:"omitempty,uuid4"`
	DepartDate     string            `json:"depart_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Travelers      []TravelerRequest `json:"travelers" validate:"required,min=1,max=50,dive"`
	CustomerName   string            `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail  string            `json:"customer_email" validate:"required,email"`
	CustomerPhone  string            `json:"customer_phone" validate:"required,min=8,max=20"`
	PaymentOption  string            `json:"payment_option" validate:"required,oneof=deposit full"`
	Discount       int64             `json:"discount" validate:"gte=0"`
	SpecialRequest *string           `json:"special_request,omitempty"`
}

// AvailabilityRequest is parsed from query parameters; the handler
// fills it, the service resolves the departure either way.
type AvailabilityRequest struct {
	DepartureID string `json:"departure_id" validate:"omitempty,uuid4"`
	PackageID   string `json:"package_id" validate:"omitempty,uuid4"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Travelers   int    `json:"travelers" validate:"required,gte=1"`
}
