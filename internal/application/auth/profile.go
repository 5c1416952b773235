package auth

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// ProfileOps operaciones de contraseña y email sobre el perfil de la sesión
// vigente. Separadas del FSM de login: aquí ya hay sesión.
type ProfileOps struct {
	store *session.Store
	log   *logger.Logger

	mu   sync.Mutex
	busy bool
}

// NewProfileOps construye las operaciones de perfil sobre el store.
func NewProfileOps(store *session.Store, log *logger.Logger) *ProfileOps {
	if log == nil {
		log = logger.Nop()
	}
	return &ProfileOps{store: store, log: log}
}

// NeedsSetup indica qué flujo de contraseña ofrecer: setup cuando el usuario
// está marcado needs_password_setup o aún no tiene contraseña; cambio en caso
// contrario.
func (p *ProfileOps) NeedsSetup() bool {
	snap := p.store.Snapshot()
	if snap.User == nil {
		return false
	}
	return snap.User.NeedsPasswordSetup || !snap.User.HasPassword
}

// SetupPassword establece la primera contraseña vía POST /api/auth/profile/setup-password.
func (p *ProfileOps) SetupPassword(ctx context.Context, req dto.SetupPasswordRequest) error {
	if !p.store.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, registerFieldMessage(err))
	}
	if err := p.begin(); err != nil {
		return err
	}
	defer p.settle()
	_, err := p.store.AuthenticatedClient().AuthenticatedRequest(ctx, "POST", "/api/auth/profile/setup-password", req, nil)
	if err != nil {
		p.store.HandleAuthError(err)
		return err
	}
	return p.refreshUser(ctx)
}

// ChangePassword cambia la contraseña vía PUT /api/auth/profile/password.
// El contrato vigente del backend recibe los campos como query parameters.
func (p *ProfileOps) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	if !p.store.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, registerFieldMessage(err))
	}
	if err := p.begin(); err != nil {
		return err
	}
	defer p.settle()
	q := url.Values{}
	q.Set("current_password", req.CurrentPassword)
	q.Set("new_password", req.NewPassword)
	q.Set("confirm_password", req.ConfirmPassword)
	_, err := p.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/auth/profile/password", nil, q)
	if err != nil {
		p.store.HandleAuthError(err)
		return err
	}
	return p.refreshUser(ctx)
}

// UpdateEmail actualiza el email vía PUT /api/auth/profile/email. La
// contraseña solo se exige cuando el usuario ya tiene una.
func (p *ProfileOps) UpdateEmail(ctx context.Context, req dto.UpdateEmailRequest) error {
	snap := p.store.Snapshot()
	if snap.User == nil {
		return domain.ErrNotAuthenticated
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if snap.User.HasPassword && req.Password == "" {
		return fmt.Errorf("%w: la contraseña es requerida para cambiar el email", domain.ErrInvalidInput)
	}
	if err := p.begin(); err != nil {
		return err
	}
	defer p.settle()
	_, err := p.store.AuthenticatedClient().AuthenticatedRequest(ctx, "PUT", "/api/auth/profile/email", req, nil)
	if err != nil {
		p.store.HandleAuthError(err)
		return err
	}
	return p.refreshUser(ctx)
}

// begin toma la guarda single-flight: con una operación en curso la nueva se
// descarta, no se encola.
func (p *ProfileOps) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return domain.ErrRequestInFlight
	}
	p.busy = true
	return nil
}

func (p *ProfileOps) settle() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}

// refreshUser relee /api/auth/me y actualiza el snapshot cacheado del store.
func (p *ProfileOps) refreshUser(ctx context.Context) error {
	env, err := p.store.AuthenticatedClient().AuthenticatedRequest(ctx, "GET", "/api/auth/me", nil, nil)
	if err != nil {
		p.store.HandleAuthError(err)
		return err
	}
	var user entity.User
	if err := env.Decode(&user); err != nil {
		return err
	}
	p.store.UpdateUser(&user)
	return nil
}
