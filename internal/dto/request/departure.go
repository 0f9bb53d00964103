package request

type CreateDepartureRequest struct {
	PackageID     string `json:"package_id" validate:"required,uuid4"`
	DepartDate    string `json:"depart_date" validate:"required,datetime=2006-01-02"`
	SeatsTotal    int    `json:"seats_total" validate:"required,gte=1,lte=500"`
	PriceOverride *int64 `json:"price_override,omitempty" validate:"omitempty,gt=0"`
}
