// Package orders implementa el view-model del panel de órdenes: listado
// filtrado y paginado, detalle, transición de estado con efectos (tracking,
// entrega esperada) y línea de tiempo de notas solo-añadir.
package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// Dialog diálogo abierto en el panel.
type Dialog string

const (
	DialogNone         Dialog = "none"
	DialogDetails      Dialog = "details"
	DialogStatusUpdate Dialog = "statusUpdate"
	DialogNote         Dialog = "note"
)

// ReceiptGenerator exporta el recibo PDF de una orden (adaptador Maroto).
type ReceiptGenerator interface {
	GenerateOrderReceipt(order *entity.Order) ([]byte, error)
}

// Snapshot observación del estado del panel para el render.
type Snapshot struct {
	Orders   []entity.Order
	Selected *entity.Order
	Filters  dto.OrderFilters
	Meta     dto.PageMeta
	Loading  bool
	Dialog   Dialog
	Err      string
}

// Controller view-model del panel de órdenes. Las peticiones se serializan
// con el flag loading: los lanzamientos concurrentes se descartan, no se
// encolan. Tras Close las respuestas tardías se ignoran en silencio.
type Controller struct {
	store    *session.Store
	receipts ReceiptGenerator
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	orders   []entity.Order
	selected *entity.Order
	filters  dto.OrderFilters
	page     dto.PageQuery
	meta     dto.PageMeta
	loading  bool
	dialog   Dialog
	errMsg   string
	closed   bool
}

// NewController construye el controlador. receipts puede ser nil si la
// superficie no ofrece exportación.
func NewController(store *session.Store, receipts ReceiptGenerator, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		store:    store,
		receipts: receipts,
		log:      log,
		now:      time.Now,
		dialog:   DialogNone,
	}
	c.page.DefaultPage()
	return c
}

// Snapshot devuelve la observación actual del panel.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Orders:   c.orders,
		Selected: c.selected,
		Filters:  c.filters,
		Meta:     c.meta,
		Loading:  c.loading,
		Dialog:   c.dialog,
		Err:      c.errMsg,
	}
}

// Close descarta el controlador (la vista se fue); los resultados en vuelo
// no mutan nada al resolver.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// ── Listado ───────────────────────────────────────────────────────────────────

// FetchList GET /api/orders/admin/all con filtros y paginación vigentes.
// En éxito reemplaza orders y toma la paginación del sobre; en fallo el
// estado existente queda intacto y solo se expone el error. Sin reintentos.
func (c *Controller) FetchList(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	query := c.filters.Query(c.page)
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/orders/admin/all", nil, query)
	if err != nil {
		c.failList(err)
		return
	}
	var list []entity.Order
	if err := env.Decode(&list); err != nil {
		c.failList(err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.orders = list
	c.meta = dto.PageMeta{Page: env.Page, PerPage: env.PerPage, Total: env.Total, TotalPages: env.TotalPages}
}

// SetFilters reemplaza los filtros, vuelve a la página 1 y relanza el listado.
func (c *Controller) SetFilters(ctx context.Context, f dto.OrderFilters) {
	c.mu.Lock()
	c.filters = f
	c.page.Page = 1
	c.mu.Unlock()
	c.FetchList(ctx)
}

// SetPage cambia de página y relanza el listado. Fuera de rango se ignora.
func (c *Controller) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	if page < 1 || (c.meta.TotalPages > 0 && page > c.meta.TotalPages) {
		c.mu.Unlock()
		return
	}
	c.page.Page = page
	c.mu.Unlock()
	c.FetchList(ctx)
}

// NextPage avanza una página; deshabilitado en la última.
func (c *Controller) NextPage(ctx context.Context) {
	c.mu.Lock()
	next := c.page.Page + 1
	c.mu.Unlock()
	c.SetPage(ctx, next)
}

// PrevPage retrocede una página; deshabilitado en la primera.
func (c *Controller) PrevPage(ctx context.Context) {
	c.mu.Lock()
	prev := c.page.Page - 1
	c.mu.Unlock()
	c.SetPage(ctx, prev)
}

// ── Detalle y diálogos ────────────────────────────────────────────────────────

// OpenDetails GET /api/orders/{id}; fija selected y abre el diálogo de detalle.
func (c *Controller) OpenDetails(ctx context.Context, id string) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	order, err := c.fetchOrder(ctx, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	if err != nil {
		c.errMsg = apierror.Human(err)
		return
	}
	c.selected = order
	c.dialog = DialogDetails
}

// OpenStatusDialog abre el diálogo de cambio de estado sobre la orden seleccionada.
func (c *Controller) OpenStatusDialog() { c.openDialog(DialogStatusUpdate) }

// OpenNoteDialog abre el diálogo de nota sobre la orden seleccionada.
func (c *Controller) OpenNoteDialog() { c.openDialog(DialogNote) }

func (c *Controller) openDialog(d Dialog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil {
		c.dialog = d
	}
}

// CloseDialog cierra cualquier diálogo abierto.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = DialogNone
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// UpdateStatus PUT /api/orders/{id} con exactamente los campos provistos
// (status siempre; tracking, notas y entrega esperada solo si vienen). El
// cliente no restringe transiciones: el backend adjudica la legalidad. En
// éxito relanza el listado con filtros/página vigentes y reabre el detalle.
func (c *Controller) UpdateStatus(ctx context.Context, upd dto.StatusUpdate) error {
	if !upd.Status.Valid() {
		return fmt.Errorf("%w: estado de orden desconocido %q", domain.ErrInvalidInput, upd.Status)
	}
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return domain.ErrNotFound
	}
	if c.loading || c.closed {
		c.mu.Unlock()
		return domain.ErrRequestInFlight
	}
	c.loading = true
	c.errMsg = ""
	id := c.selected.ID
	c.mu.Unlock()

	body := dto.UpdateOrderRequest{Status: &upd.Status}
	if upd.TrackingNumber != "" {
		body.TrackingNumber = &upd.TrackingNumber
	}
	if upd.Notes != "" {
		body.Notes = &upd.Notes
	}
	if upd.ExpectedDelivery != "" {
		body.ExpectedDeliveryDate = &upd.ExpectedDelivery
	}

	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/orders/"+id, body, nil); err != nil {
		c.failMutation(err)
		return err
	}

	c.settleLoading()
	c.refreshAfterMutation(ctx, id)
	return nil
}

// AppendNote añade una nota como línea timestamped sobre el campo notes
// completo: el PUT lleva notes = anteriores + "\n[<ISO>] <texto>" y nada más.
// No existe endpoint de append real; la concatenación sobreescribe el campo,
// con el timestamp ISO del cliente como orden de la línea de tiempo.
func (c *Controller) AppendNote(ctx context.Context, note dto.NoteInput) error {
	if note.Text == "" {
		return fmt.Errorf("%w: la nota no puede ser vacía", domain.ErrInvalidInput)
	}
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return domain.ErrNotFound
	}
	if c.loading || c.closed {
		c.mu.Unlock()
		return domain.ErrRequestInFlight
	}
	c.loading = true
	c.errMsg = ""
	id := c.selected.ID
	previous := c.selected.Notes
	c.mu.Unlock()

	stamp := c.now().UTC().Format(time.RFC3339)
	line := "[" + stamp + "] " + note.Text
	combined := line
	if previous != "" {
		combined = previous + "\n" + line
	}

	body := dto.UpdateOrderRequest{Notes: &combined}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/orders/"+id, body, nil); err != nil {
		c.failMutation(err)
		return err
	}

	c.settleLoading()
	c.refetchDetails(ctx, id)
	return nil
}

// ExportReceipt genera el recibo PDF de la orden seleccionada.
func (c *Controller) ExportReceipt() ([]byte, error) {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected == nil {
		return nil, domain.ErrNotFound
	}
	if c.receipts == nil {
		return nil, fmt.Errorf("orders: exportación de recibos no disponible")
	}
	return c.receipts.GenerateOrderReceipt(selected)
}

// ── Internos ──────────────────────────────────────────────────────────────────

func (c *Controller) fetchOrder(ctx context.Context, id string) (*entity.Order, error) {
	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/orders/"+id, nil, nil)
	if err != nil {
		c.store.HandleAuthError(err)
		return nil, err
	}
	var order entity.Order
	if err := env.Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// refreshAfterMutation relanza el listado y reabre el detalle de la orden.
func (c *Controller) refreshAfterMutation(ctx context.Context, id string) {
	c.FetchList(ctx)
	c.refetchDetails(ctx, id)
}

func (c *Controller) refetchDetails(ctx context.Context, id string) {
	order, err := c.fetchOrder(ctx, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if err != nil {
		c.errMsg = apierror.Human(err)
		return
	}
	c.selected = order
	c.dialog = DialogDetails
}

func (c *Controller) failList(err error) {
	c.store.HandleAuthError(err)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("orders: listado falló")
}

func (c *Controller) failMutation(err error) {
	c.store.HandleAuthError(err)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("orders: mutación falló")
}

func (c *Controller) settleLoading() {
	c.mu.Lock()
	c.loading = false
	c.dialog = DialogNone
	c.mu.Unlock()
}

// SetClock fija el reloj del controlador (tests de la línea de tiempo).
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now != nil {
		c.now = now
	}
}
