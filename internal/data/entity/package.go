package entity

// TravelPackage is a sellable trip template. Prices are whole rupees
// per traveler; bookings snapshot them at creation time.
type TravelPackage struct {
	Base
	Title        string `db:"title"`
	Category     string `db:"category"`
	BasePrice    int64  `db:"base_price"`
	TokenPrice   int64  `db:"token_price"`
	MaxGroupSize int    `db:"max_group_size"`
	IsActive     bool   `db:"is_active"`
}
