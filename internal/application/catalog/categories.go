package catalog

import (
	"context"
	"sync"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// CategoriesController view-model CRUD de categorías (lista corta, sin paginar).
type CategoriesController struct {
	store *session.Store
	log   *logger.Logger

	mu         sync.Mutex
	categories []entity.Category
	loading    bool
	errMsg     string
	closed     bool
}

// NewCategoriesController construye el controlador.
func NewCategoriesController(store *session.Store, log *logger.Logger) *CategoriesController {
	if log == nil {
		log = logger.Nop()
	}
	return &CategoriesController{store: store, log: log}
}

// Categories devuelve las categorías cargadas.
func (c *CategoriesController) Categories() []entity.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories
}

// Error devuelve el error visible, "" si no hay.
func (c *CategoriesController) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Close descarta el controlador.
func (c *CategoriesController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// FetchList GET /api/products/categories/available.
func (c *CategoriesController) FetchList(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/products/categories/available", nil, nil)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var list []entity.Category
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
	c.categories = list
}

// Create POST /api/products/categories y relanza el listado.
func (c *CategoriesController) Create(ctx context.Context, req dto.CreateCategoryRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "POST", "/api/products/categories", req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Update PUT /api/products/categories/{id} con solo los campos provistos.
func (c *CategoriesController) Update(ctx context.Context, id string, req dto.UpdateCategoryRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/products/categories/"+id, req, nil); err != nil {
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
func (c *CategoriesController) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || c.closed {
		return domain.ErrRequestInFlight
	}
	c.loading = true
	c.errMsg = ""
	return nil
}

func (c *CategoriesController) settleMutation() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

func (c *CategoriesController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("catalog: listado de categorías falló")
}
