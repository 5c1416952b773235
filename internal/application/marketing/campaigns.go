// Package marketing implementa los view-models de campañas y comisiones del
// panel de administración.
package marketing

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

// CampaignsController CRUD de campañas.
type CampaignsController struct {
	store *session.Store
	log   *logger.Logger

	mu        sync.Mutex
	campaigns []entity.Campaign
	loading   bool
	errMsg    string
	closed    bool
}

// NewCampaignsController construye el controlador.
func NewCampaignsController(store *session.Store, log *logger.Logger) *CampaignsController {
	if log == nil {
		log = logger.Nop()
	}
	return &CampaignsController{store: store, log: log}
}

// Campaigns devuelve las campañas cargadas.
func (c *CampaignsController) Campaigns() []entity.Campaign {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.campaigns
}

// Error devuelve el error visible, "" si no hay.
func (c *CampaignsController) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Close descarta el controlador.
func (c *CampaignsController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// FetchList GET /api/campaigns.
func (c *CampaignsController) FetchList(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/campaigns", nil, nil)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var list []entity.Campaign
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
	c.campaigns = list
}

// Create POST /api/campaigns y relanza el listado.
func (c *CampaignsController) Create(ctx context.Context, req dto.CampaignRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "POST", "/api/campaigns", req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Update PUT /api/campaigns/{id} y relanza el listado.
func (c *CampaignsController) Update(ctx context.Context, id string, req dto.CampaignRequest) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/campaigns/"+id, req, nil); err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return err
	}
	c.settleMutation()
	c.FetchList(ctx)
	return nil
}

// Delete DELETE /api/campaigns/{id} y relanza el listado.
func (c *CampaignsController) Delete(ctx context.Context, id string) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	if _, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "DELETE", "/api/campaigns/"+id, nil, nil); err != nil {
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
func (c *CampaignsController) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || c.closed {
		return domain.ErrRequestInFlight
	}
	c.loading = true
	c.errMsg = ""
	return nil
}

func (c *CampaignsController) settleMutation() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

func (c *CampaignsController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("marketing: operación de campañas falló")
}
