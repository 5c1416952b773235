package dto

import (
	"net/url"
	"strconv"

	"github.com/vallmark/storefront-client/internal/domain/entity"
)

// OrderFilters filtros del listado de órdenes del panel. Los campos nil/vacíos
// no viajan en la query.
type OrderFilters struct {
	Status     entity.OrderStatus
	AssignedTo string
	Priority   *entity.OrderPriority
	Search     string
}

// Query serializa filtros y paginación como query parameters de
// GET /api/orders/admin/all.
func (f OrderFilters) Query(page PageQuery) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("per_page", strconv.Itoa(page.PerPage))
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.AssignedTo != "" {
		q.Set("assigned_to", f.AssignedTo)
	}
	if f.Priority != nil {
		q.Set("priority", strconv.Itoa(int(*f.Priority)))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// UpdateOrderRequest cuerpo parcial de PUT /api/orders/{id}: solo los campos
// provistos (punteros no nil) se serializan.
type UpdateOrderRequest struct {
	Status               *entity.OrderStatus `json:"status,omitempty"`
	TrackingNumber       *string             `json:"tracking_number,omitempty"`
	Notes                *string             `json:"notes,omitempty"`
	ExpectedDeliveryDate *string             `json:"expected_delivery_date,omitempty"`
}

// StatusUpdate entrada del diálogo de cambio de estado del panel.
type StatusUpdate struct {
	Status           entity.OrderStatus
	TrackingNumber   string
	Notes            string
	ExpectedDelivery string // fecha ISO; vacío = no enviar
}

// NoteInput entrada del diálogo de nota.
type NoteInput struct {
	Text       string
	IsInternal bool
}
