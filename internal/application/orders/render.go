package orders

import (
	"fmt"

	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/format"
)

// StatusStyle configuración acotada de renderizado de un estado.
type StatusStyle struct {
	Label string
	Color string // nombre de color del design system del panel
}

// statusTable tabla cerrada de renderizado por estado.
var statusTable = map[entity.OrderStatus]StatusStyle{
	entity.StatusPending:    {Label: "Pending", Color: "amber"},
	entity.StatusProcessing: {Label: "Processing", Color: "blue"},
	entity.StatusShipped:    {Label: "Shipped", Color: "violet"},
	entity.StatusDelivered:  {Label: "Delivered", Color: "green"},
	entity.StatusCancelled:  {Label: "Cancelled", Color: "red"},
}

// priorityTable tabla cerrada de renderizado por prioridad.
var priorityTable = map[entity.OrderPriority]StatusStyle{
	entity.PriorityNormal: {Label: "Normal", Color: "gray"},
	entity.PriorityHigh:   {Label: "High", Color: "amber"},
	entity.PriorityUrgent: {Label: "Urgent", Color: "red"},
}

// StyleFor devuelve el estilo del estado; los valores fuera del conjunto
// cerrado caen a un estilo neutro.
func StyleFor(s entity.OrderStatus) StatusStyle {
	if st, ok := statusTable[s]; ok {
		return st
	}
	return StatusStyle{Label: string(s), Color: "gray"}
}

// PriorityStyleFor devuelve el estilo de la prioridad.
func PriorityStyleFor(p entity.OrderPriority) StatusStyle {
	if st, ok := priorityTable[p]; ok {
		return st
	}
	return StatusStyle{Label: p.Label(), Color: "gray"}
}

// AmountLabel monto de la orden en INR con agrupación en-IN.
func AmountLabel(o *entity.Order) string {
	return format.INR(o.FinalAmount)
}

// DateLabel fecha de creación en el formato en-IN del panel.
func DateLabel(o *entity.Order) string {
	return format.DateTime(o.CreatedAt)
}

// ShowingLabel resumen "N–M of T" construido con los totales del sobre.
func (s Snapshot) ShowingLabel() string {
	if s.Meta.Total == 0 {
		return "0 of 0"
	}
	return fmt.Sprintf("%d–%d of %d", s.Meta.ShowingFrom(), s.Meta.ShowingTo(), s.Meta.Total)
}
