package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type PackageResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	BasePrice    int64     `json:"base_price"`
	TokenPrice   int64     `json:"token_price"`
	MaxGroupSize int       `json:"max_group_size"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func PackageToResponse(pkg *entity.TravelPackage) PackageResponse {
	return PackageResponse{
		ID:           pkg.ID.String(),
		Title:        pkg.Title,
		Category:     pkg.Category,
		BasePrice:    pkg.BasePrice,
		TokenPrice:   pkg.TokenPrice,
		MaxGroupSize: pkg.MaxGroupSize,
		IsActive:     pkg.IsActive,
		CreatedAt:    pkg.CreatedAt,
	}
}
