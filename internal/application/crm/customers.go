// Package crm implementa el view-model del listado de clientes del panel.
package crm

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// CustomersSnapshot observación del listado de clientes.
type CustomersSnapshot struct {
	Customers []entity.Customer
	Selected  *entity.Customer
	Meta      dto.PageMeta
	Loading   bool
	Err       string
}

// CustomersController view-model de clientes: listado paginado con búsqueda
// y detalle. Solo lectura: las ediciones de cliente van por user management.
type CustomersController struct {
	store *session.Store
	log   *logger.Logger

	mu        sync.Mutex
	customers []entity.Customer
	selected  *entity.Customer
	page      dto.PageQuery
	search    string
	meta      dto.PageMeta
	loading   bool
	errMsg    string
	closed    bool
}

// NewCustomersController construye el controlador.
func NewCustomersController(store *session.Store, log *logger.Logger) *CustomersController {
	if log == nil {
		log = logger.Nop()
	}
	c := &CustomersController{store: store, log: log}
	c.page.DefaultPage()
	return c
}

// Snapshot devuelve el estado actual.
func (c *CustomersController) Snapshot() CustomersSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CustomersSnapshot{Customers: c.customers, Selected: c.selected, Meta: c.meta, Loading: c.loading, Err: c.errMsg}
}

// Close descarta el controlador.
func (c *CustomersController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// SetSearch fija la búsqueda, vuelve a página 1 y relanza.
func (c *CustomersController) SetSearch(ctx context.Context, search string) {
	c.mu.Lock()
	c.search = search
	c.page.Page = 1
	c.mu.Unlock()
	c.FetchList(ctx)
}

// SetPage cambia de página y relanza.
func (c *CustomersController) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	if page < 1 || (c.meta.TotalPages > 0 && page > c.meta.TotalPages) {
		c.mu.Unlock()
		return
	}
	c.page.Page = page
	c.mu.Unlock()
	c.FetchList(ctx)
}

// FetchList GET /api/admin/customers con búsqueda y paginación vigentes.
func (c *CustomersController) FetchList(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	q := url.Values{}
	q.Set("page", strconv.Itoa(c.page.Page))
	q.Set("per_page", strconv.Itoa(c.page.PerPage))
	if c.search != "" {
		q.Set("search", c.search)
	}
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/admin/customers", nil, q)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var list []entity.Customer
	if err := env.Decode(&list); err != nil {
		c.fail(err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.customers = list
	c.meta = dto.PageMeta{Page: env.Page, PerPage: env.PerPage, Total: env.Total, TotalPages: env.TotalPages}
}

// OpenDetails GET /api/admin/customers/{id}. Con una petición en vuelo el
// pedido se descarta, no se encola.
func (c *CustomersController) OpenDetails(ctx context.Context, id string) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/admin/customers/"+id, nil, nil)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var customer entity.Customer
	if err := env.Decode(&customer); err != nil {
		c.fail(err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.selected = &customer
}

func (c *CustomersController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("crm: operación de clientes falló")
}
