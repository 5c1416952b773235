// Package catalog implementa los view-models CRUD del catálogo (productos y
// categorías) del panel de administración. Misma forma que el panel de
// órdenes: listado paginado, single-flight, el fallo no toca el estado.
package catalog

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// ProductsSnapshot observación del listado de productos.
type ProductsSnapshot struct {
	Products []entity.Product
	Meta     dto.PageMeta
	Loading  bool
	Err      string
}

// ProductsController view-model CRUD de productos.
type ProductsController struct {
	store *session.Store
	log   *logger.Logger

	mu       sync.Mutex
	products []entity.Product
	page     dto.PageQuery
	category string
	search   string
	meta     dto.PageMeta
	loading  bool
	errMsg   string
	closed   bool
}

// NewProductsController construye el controlador.
func NewProductsController(store *session.Store, log *logger.Logger) *ProductsController {
	if log == nil {
		log = logger.Nop()
	}
	c := &ProductsController{store: store, log: log}
	c.page.DefaultPage()
	return c
}

// Snapshot devuelve el estado actual del listado.
func (c *ProductsController) Snapshot() ProductsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ProductsSnapshot{Products: c.products, Meta: c.meta, Loading: c.loading, Err: c.errMsg}
}

// Close descarta el controlador.
func (c *ProductsController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// SetFilters fija categoría y búsqueda, vuelve a página 1 y relanza.
func (c *ProductsController) SetFilters(ctx context.Context, category, search string) {
	c.mu.Lock()
	c.category = category
	c.search = search
	c.page.Page = 1
	c.mu.Unlock()
	c.FetchList(ctx)
}

// SetPage cambia de página y relanza.
func (c *ProductsController) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	if page < 1 || (c.meta.TotalPages > 0 && page > c.meta.TotalPages) {
		c.mu.Unlock()
		return
	}
	c.page.Page = page
	c.mu.Unlock()
	c.FetchList(ctx)
}

// FetchList GET /api/products/ con filtros y paginación vigentes.
func (c *ProductsController) FetchList(ctx context.Context) {
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
	if c.category != "" {
		q.Set("category", c.category)
	}
	if c.search != "" {
		q.Set("search", c.search)
	}
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/products/", nil, q)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var list []entity.Product
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
	c.products = list
	c.meta = dto.PageMeta{Page: env.Page, PerPage: env.PerPage, Total: env.Total, TotalPages: env.TotalPages}
}

// Create POST /api/products/ y relanza el listado.
func (c *ProductsController) Create(ctx context.Context, req dto.CreateProductRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "POST", "/api/products/", req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Update PUT /api/products/{id} con solo los campos provistos y relanza.
func (c *ProductsController) Update(ctx context.Context, id string, req dto.UpdateProductRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/products/"+id, req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Delete DELETE /api/products/{id} y relanza.
func (c *ProductsController) Delete(ctx context.Context, id string) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "DELETE", "/api/products/"+id, nil, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// beginMutation toma la guarda single-flight: con una petición en vuelo la
// mutación se descarta, no se encola.
func (c *ProductsController) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || c.closed {
		return domain.ErrRequestInFlight
	}
	c.loading = true
	c.errMsg = ""
	return nil
}

func (c *ProductsController) settleMutation() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

func (c *ProductsController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("catalog: listado de productos falló")
}
