package request

type CreatePackageRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=150"`
	Category     string `json:"category" validate:"required,min=2,max=50"`
	BasePrice    int64  `json:"base_price" validate:"required,gt=0"`
	TokenPrice   int64  `json:"token_price" validate:"required,gt=0"`
	MaxGroupSize int    `json:"max_group_size" validate:"required,gte=1,lte=100"`
	IsActive     bool   `json:"is_active"`
}

type UpdatePackageRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=150"`
	Category     string `json:"category" validate:"required,min=2,max=50"`
	BasePrice    int64  `json:"base_price" validate:"required,gt=0"`
	TokenPrice   int64  `json:"token_price" validate:"required,gt=0"`
	MaxGroupSize int    `json:"max_group_size" validate:"required,gte=1,lte=100"`
	IsActive     bool   `json:"is_active"`
}
