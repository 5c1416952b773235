package dto

import "github.com/shopspring/decimal"

// AddressRequest entrada de creación/edición de dirección (/api/addresses).
type AddressRequest struct {
	TagName   string `json:"tag_name" validate:"required"`
	FullName  string `json:"full_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Line1     string `json:"address_line1" validate:"required"`
	Line2     string `json:"address_line2,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip_code" validate:"required"`
	Country   string `json:"country" validate:"required"`
	IsDefault bool   `json:"is_default"`
}

// AddCartItemRequest entrada de POST /api/cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// SetCartQuantityRequest entrada de PUT /api/cart/items/{product_id}.
// Cantidad 0 elimina la línea.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CampaignRequest entrada de creación/edición de campaña.
type CampaignRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        string          `json:"starts_at" validate:"required"`
	EndsAt          string          `json:"ends_at" validate:"required"`
}
