// Package cart implementa el contrato de estado del carrito que consumen la
// UI de carrito y el checkout: líneas ordenadas y totales derivados.
package cart

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// Snapshot observación del carrito con sus totales derivados.
type Snapshot struct {
	Items       []entity.CartItem
	TotalItems  int
	TotalAmount decimal.Decimal
	Loading     bool
	Err         string
}

// Controller view-model del carrito. Mismo contrato que el resto de
// controladores: single-flight, el fallo no toca el estado existente.
type Controller struct {
	store *session.Store
	log   *logger.Logger

	mu      sync.Mutex
	cart    entity.Cart
	loading bool
	errMsg  string
	closed  bool
}

// NewController construye el controlador del carrito.
func NewController(store *session.Store, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{store: store, log: log}
}

// Snapshot devuelve líneas y totales actuales.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Items:       c.cart.Items,
		TotalItems:  c.cart.TotalItems(),
		TotalAmount: c.cart.TotalAmount(),
		Loading:     c.loading,
		Err:         c.errMsg,
	}
}

// Close descarta el controlador.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Fetch GET /api/cart.
func (c *Controller) Fetch(ctx context.Context) {
	c.request(ctx, "GET", "/api/cart", nil)
}

// Add POST /api/cart/items con producto y cantidad (≥ 1).
func (c *Controller) Add(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	c.request(ctx, "POST", "/api/cart/items", dto.AddCartItemRequest{ProductID: productID, Quantity: quantity})
}

// SetQuantity fija la cantidad de una línea. Cantidad 0 elimina la línea
// (la última unidad removida tira la línea completa).
func (c *Controller) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(ctx, productID)
		return
	}
	c.request(ctx, "PUT", "/api/cart/items/"+productID, dto.SetCartQuantityRequest{Quantity: quantity})
}

// Remove elimina una línea del carrito.
func (c *Controller) Remove(ctx context.Context, productID string) {
	c.request(ctx, "DELETE", "/api/cart/items/"+productID, nil)
}

// Clear vacía el carrito.
func (c *Controller) Clear(ctx context.Context) {
	c.request(ctx, "DELETE", "/api/cart", nil)
}

// request lanza la operación y adopta el carrito devuelto por el backend.
func (c *Controller) request(ctx context.Context, method, path string, body any) {
	c.mu.Lock()
	if c.loading || c.closed {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	env, err := c.store.AuthenticatedClient().AuthenticatedRequest(ctx, method, path, body, nil)
	if err != nil {
		c.store.HandleAuthError(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loading = false
	if err != nil {
		c.errMsg = apierror.Human(err)
		c.log.Debug().Err(err).Str("path", path).Msg("cart: operación falló")
		return
	}
	var cart entity.Cart
	if err := env.Decode(&cart); err != nil {
		c.errMsg = apierror.Human(err)
		return
	}
	c.cart = normalize(cart)
}

// normalize descarta líneas con cantidad < 1; el invariante del carrito es
// quantity ≥ 1 y una línea en 0 no existe.
func normalize(cart entity.Cart) entity.Cart {
	items := cart.Items[:0]
	for _, it := range cart.Items {
		if it.Quantity >= 1 {
			items = append(items, it)
		}
	}
	cart.Items = items
	return cart
}

// QuantityLabel etiqueta corta de cantidad para la línea.
func QuantityLabel(it entity.CartItem) string {
	return strconv.Itoa(it.Quantity) + " ×"
}
