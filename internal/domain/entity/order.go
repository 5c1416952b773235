package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de una orden (conjunto cerrado de cinco valores).
type OrderStatus string

// Estados válidos para Order. El cliente no restringe transiciones:
// el backend adjudica la legalidad de cada cambio.
const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// AllOrderStatuses los cinco estados que ofrece el panel de administración.
var AllOrderStatuses = []OrderStatus{
	StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

// Valid indica si el estado pertenece al conjunto cerrado.
func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderPriority prioridad de una orden: 0 normal, 1 alta, 2 urgente.
type OrderPriority int

const (
	PriorityNormal OrderPriority = 0
	PriorityHigh   OrderPriority = 1
	PriorityUrgent OrderPriority = 2
)

// Label etiqueta legible de la prioridad para el panel.
func (p OrderPriority) Label() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "normal"
	}
}

// ShippingAddress dirección de envío embebida en la orden.
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Line1    string `json:"address_line1"`
	Line2    string `json:"address_line2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip_code"`
}

// TimelineEntry actividad de la orden; la secuencia es solo-añadir dentro
// de la vista de una sesión.
type TimelineEntry struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// Order vista de administración de una orden.
type Order struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"order_number"`
	Status           OrderStatus     `json:"status"`
	Priority         OrderPriority   `json:"priority"`
	FinalAmount      decimal.Decimal `json:"final_amount"`
	CreatedAt        time.Time       `json:"created_at"`
	TrackingNumber   string          `json:"tracking_number,omitempty"`
	ExpectedDelivery *time.Time      `json:"expected_delivery_date,omitempty"`
	ShippingAddress  ShippingAddress `json:"shipping_address"`
	Timeline         []TimelineEntry `json:"timeline,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	AssignedTo       string          `json:"assigned_to,omitempty"`
	Items            []OrderItem     `json:"items,omitempty"`
}

// OrderItem línea de una orden (para el detalle y el recibo PDF).
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}
