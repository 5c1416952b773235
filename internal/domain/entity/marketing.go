package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign campaña de marketing administrable.
type Campaign struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
	IsActive        bool            `json:"is_active"`
}

// Commission comisión de venta asignada a un vendedor.
type Commission struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	SalespersonID string          `json:"salesperson_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"` // pending, approved, paid
	CreatedAt     time.Time       `json:"created_at"`
}

// Customer vista administrable de un cliente de la tienda.
type Customer struct {
	ID          string     `json:"id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	IsActive    bool       `json:"is_active"`
	TotalOrders int        `json:"total_orders"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}
