package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Slugs de categoría tal como los entrega el backend (conjunto cerrado).
const (
	CategoryHomeDecor        = "home_decor"
	CategoryPersonalized     = "personalized_gifts"
	CategoryJewelry          = "jewelry"
	CategoryKeepsakes        = "keepsakes"
	CategorySpecialOccasions = "special_occasions"
	CategoryAccessories      = "accessories"
)

// AllCategorySlugs conjunto cerrado de slugs de categoría.
var AllCategorySlugs = []string{
	CategoryHomeDecor, CategoryPersonalized, CategoryJewelry,
	CategoryKeepsakes, CategorySpecialOccasions, CategoryAccessories,
}

// Product artículo de regalo del catálogo.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Category categoría administrable del catálogo.
type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}
