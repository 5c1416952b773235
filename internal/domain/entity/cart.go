package entity

import "github.com/shopspring/decimal"

// CartItem línea del carrito. Quantity siempre ≥ 1: una línea que llega a
// cantidad 0 se elimina del carrito.
type CartItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

// Subtotal precio × cantidad de la línea.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart secuencia ordenada de líneas con totales derivados.
type Cart struct {
	Items []CartItem `json:"items"`
}

// TotalItems suma de cantidades de todas las líneas.
func (c Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// TotalAmount suma de precio × cantidad de todas las líneas.
func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
