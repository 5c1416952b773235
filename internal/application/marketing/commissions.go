package marketing

import (
	"context"
	"net/url"
	"sync"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/access"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// CommissionsController listado de comisiones. Para el rol salesperson el
// alcance es "solo propias": la query siempre lleva su propio user id.
type CommissionsController struct {
	store *session.Store
	log   *logger.Logger

	mu          sync.Mutex
	commissions []entity.Commission
	loading     bool
	errMsg      string
	closed      bool
}

// NewCommissionsController construye el controlador.
func NewCommissionsController(store *session.Store, log *logger.Logger) *CommissionsController {
	if log == nil {
		log = logger.Nop()
	}
	return &CommissionsController{store: store, log: log}
}

// Commissions devuelve las comisiones cargadas.
func (c *CommissionsController) Commissions() []entity.Commission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commissions
}

// Error devuelve el error visible, "" si no hay.
func (c *CommissionsController) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Close descarta el controlador.
func (c *CommissionsController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// FetchList GET /api/commissions. Con rol salesperson el gate restringe el
// alcance a las comisiones propias vía salesperson_id.
func (c *CommissionsController) FetchList(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	var q url.Values
	if snap := c.store.Snapshot(); snap.User != nil && access.CommissionsOwnOnly(snap.User.Role) {
		q = url.Values{}
		q.Set("salesperson_id", snap.User.ID)
	}

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/commissions", nil, q)
	if err != nil {
		c.store.HandleAuthError(err)
		c.fail(err)
		return
	}
	var list []entity.Commission
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
	c.commissions = list
}

func (c *CommissionsController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("marketing: listado de comisiones falló")
}
