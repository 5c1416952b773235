package dto

import "github.com/shopspring/decimal"

// CreateProductRequest entrada de POST /api/products/.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"required,oneof=home_decor personalized_gifts jewelry keepsakes special_occasions accessories"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock" validate:"min=0"`
}

// UpdateProductRequest cuerpo parcial de PUT /api/products/{id}.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// CreateCategoryRequest entrada de POST /api/products/categories.
type CreateCategoryRequest struct {
	Slug        string `json:"slug" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateCategoryRequest cuerpo parcial de PUT /api/products/categories/{id}.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
