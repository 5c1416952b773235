// Package profile implementa el view-model de direcciones del usuario.
package profile

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

// AddressesController CRUD de direcciones del usuario en sesión. El backend
// garantiza que marcar una dirección como default desmarca la anterior.
type AddressesController struct {
	store *session.Store
	log   *logger.Logger

	mu        sync.Mutex
	addresses []entity.Address
	loading   bool
	errMsg    string
	closed    bool
}

// NewAddressesController construye el controlador.
func NewAddressesController(store *session.Store, log *logger.Logger) *AddressesController {
	if log == nil {
		log = logger.Nop()
	}
	return &AddressesController{store: store, log: log}
}

// Addresses devuelve las direcciones cargadas.
func (c *AddressesController) Addresses() []entity.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addresses
}

// Default devuelve la dirección por defecto, nil si no hay.
func (c *AddressesController) Default() *entity.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.addresses {
		if c.addresses[i].IsDefault {
			return &c.addresses[i]
		}
	}
	return nil
}

// Error devuelve el error visible, "" si no hay.
func (c *AddressesController) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Close descarta el controlador.
func (c *AddressesController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// FetchList GET /api/addresses.
func (c *AddressesController) FetchList(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/addresses", nil, nil)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var list []entity.Address
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
	c.addresses = list
}

// Create POST /api/addresses y relanza el listado.
func (c *AddressesController) Create(ctx context.Context, req dto.AddressRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "POST", "/api/addresses", req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Update PUT /api/addresses/{id} y relanza el listado.
func (c *AddressesController) Update(ctx context.Context, id string, req dto.AddressRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/addresses/"+id, req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Delete DELETE /api/addresses/{id} y relanza el listado.
func (c *AddressesController) Delete(ctx context.Context, id string) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "DELETE", "/api/addresses/"+id, nil, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// SetDefault PUT /api/addresses/{id}/default y relanza el listado.
func (c *AddressesController) SetDefault(ctx context.Context, id string) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/addresses/"+id+"/default", nil, nil); err != nil {
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
func (c *AddressesController) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || c.closed {
		return domain.ErrRequestInFlight
	}
	c.loading = true
	c.errMsg = ""
	return nil
}

func (c *AddressesController) settleMutation() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

func (c *AddressesController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("profile: operación de direcciones falló")
}
