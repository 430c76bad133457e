package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry owned by exactly one farmer.
type Product struct {
	ID                int64           `json:"id"`
	FarmerID          int64           `json:"farmerId"`
	CategoryID        int64           `json:"categoryId"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Unit              string          `json:"unit"`
	QuantityAvailable int             `json:"quantityAvailable"`
	Images            []string        `json:"images"`
	IsOrganic         bool            `json:"isOrganic"`
	IsFeatured        bool            `json:"isFeatured"`
	IsActive          bool            `json:"isActive"`
	HarvestDate       *time.Time      `json:"harvestDate,omitempty"`
	AvailableUntil    *time.Time      `json:"availableUntil,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`

	Farmer   *FarmerSummary   `json:"farmer,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
}

type FarmerSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type CategorySummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// NewProduct is the create request body.
type NewProduct struct {
	Name              string          `json:"name" validate:"required"`
	Description       string          `json:"description" validate:"required"`
	CategoryID        int64           `json:"categoryId" validate:"required"`
	Price             decimal.Decimal `json:"price" validate:"required"`
	Unit              string          `json:"unit" validate:"required"`
	QuantityAvailable int             `json:"quantityAvailable" validate:"min=0"`
	Images            []string        `json:"images"`
	IsOrganic         bool            `json:"isOrganic"`
	IsFeatured        bool            `json:"isFeatured"`
	HarvestDate       *time.Time      `json:"harvestDate"`
	AvailableUntil    *time.Time      `json:"availableUntil"`
}

// UpdateProduct is the partial-update request body; nil fields are left as is.
type UpdateProduct struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	CategoryID        *int64           `json:"categoryId"`
	Price             *decimal.Decimal `json:"price"`
	Unit              *string          `json:"unit"`
	QuantityAvailable *int             `json:"quantityAvailable"`
	Images            []string         `json:"images"`
	IsOrganic         *bool            `json:"isOrganic"`
	IsFeatured        *bool            `json:"isFeatured"`
	IsActive          *bool            `json:"isActive"`
	HarvestDate       *time.Time       `json:"harvestDate"`
	AvailableUntil    *time.Time       `json:"availableUntil"`
}

// Filter narrows List results.
type Filter struct {
	Search   string
	Category int64
	Farmer   int64
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	Limit    int
}
