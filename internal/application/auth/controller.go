// Package auth implementa la máquina de estados de autenticación: login por
// email/contraseña o teléfono/OTP, registro, recuperación de contraseña y
// operaciones de contraseña de perfil. Consume la fábrica HTTP y escribe en
// el Session Store; nunca al revés.
package auth

import (
	"context"
	"net/url"
	"sync"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/infrastructure/api"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// Navigator recibe la navegación post-login (la ruta guardada al entrar).
type Navigator func(path string)

// Controller máquina de estados de login/registro/recuperación. Una sola
// petición de autenticación en vuelo: los submits reentrantes se descartan.
type Controller struct {
	client   *api.Client
	store    *session.Store
	log      *logger.Logger
	navigate Navigator

	mu         sync.Mutex
	state      State
	submitting bool
	errMsg     string
	redirect   string
	closed     bool
}

// NewController construye el controlador en el estado identifier.
func NewController(client *api.Client, store *session.Store, navigate Navigator, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Controller{
		client:   client,
		store:    store,
		log:      log,
		navigate: navigate,
		state:    StateIdentifier{},
		redirect: "/",
	}
}

// SetRedirect guarda la ruta a la que navegar tras un login exitoso
// (la ruta originalmente pedida cuando el gate redirigió al login).
func (c *Controller) SetRedirect(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path != "" {
		c.redirect = path
	}
}

// State devuelve el estado actual de la máquina.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Error devuelve el mensaje de error visible, "" si no hay.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Restart vuelve al estado identifier y limpia el estado de trabajo.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdentifier{}
	c.errMsg = ""
}

// Close descarta el controlador: las respuestas que resuelvan después se ignoran.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// ── Camino de login ───────────────────────────────────────────────────────────

// SubmitIdentifier clasifica el identificador vía POST /api/auth/login/detect
// y avanza a password (email) u otp (teléfono, enviando el OTP). En fallo
// permanece en identifier exponiendo el error.
func (c *Controller) SubmitIdentifier(ctx context.Context, identifier string) {
	if !c.begin(StateIdentifier{}) {
		return
	}

	env, err := c.client.Request(ctx, "POST", "/api/auth/login/detect", dto.DetectLoginRequest{Identifier: identifier}, nil)
	if err != nil {
		c.fail(StateIdentifier{}, err)
		return
	}
	var detect dto.DetectLoginResponse
	if err := env.Decode(&detect); err != nil {
		c.fail(StateIdentifier{}, err)
		return
	}

	switch detect.LoginType {
	case dto.LoginTypePhone:
		// El paso OTP requiere el envío del código antes de mostrarse.
		if _, err := c.client.Request(ctx, "POST", "/api/otp/send", dto.SendOTPRequest{PhoneNumber: detect.Identifier}, nil); err != nil {
			c.fail(StateIdentifier{}, err)
			return
		}
		c.settle(StateOTP{Phone: detect.Identifier})
	case dto.LoginTypeEmail:
		c.settle(StatePassword{Identifier: detect.Identifier})
	default:
		c.fail(StateIdentifier{}, &unexpectedLoginType{got: string(detect.LoginType)})
	}
}

// SubmitPassword intercambia credenciales email/contraseña por un token vía
// POST /api/auth/login (form-encoded, el único endpoint no JSON).
func (c *Controller) SubmitPassword(ctx context.Context, password string) {
	c.mu.Lock()
	from, ok := c.state.(StatePassword)
	c.mu.Unlock()
	if !ok || !c.begin(from) {
		return
	}

	form := url.Values{}
	form.Set("username", from.Identifier)
	form.Set("password", password)
	env, err := c.client.FormRequest(ctx, "/api/auth/login", form)
	if err != nil {
		c.fail(from, err)
		return
	}
	c.finishLogin(env, from)
}

// SubmitOTP valida el código vía POST /api/auth/login/mobile.
func (c *Controller) SubmitOTP(ctx context.Context, otp string) {
	c.mu.Lock()
	from, ok := c.state.(StateOTP)
	c.mu.Unlock()
	if !ok || !c.begin(from) {
		return
	}

	env, err := c.client.Request(ctx, "POST", "/api/auth/login/mobile",
		dto.MobileLoginRequest{PhoneNumber: from.Phone, OTP: otp}, nil)
	if err != nil {
		c.fail(from, err)
		return
	}
	c.finishLogin(env, from)
}

// ResendOTP reenvía el código sin salir del estado otp.
func (c *Controller) ResendOTP(ctx context.Context) error {
	c.mu.Lock()
	from, ok := c.state.(StateOTP)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := c.client.Request(ctx, "POST", "/api/otp/send", dto.SendOTPRequest{PhoneNumber: from.Phone}, nil)
	return err
}

// finishLogin adopta la sesión y navega a la ruta guardada.
func (c *Controller) finishLogin(env *api.Envelope, from State) {
	var result dto.LoginResult
	if err := env.Decode(&result); err != nil {
		c.fail(from, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.submitting = false
	c.state = StateDone{}
	c.errMsg = ""
	redirect := c.redirect
	c.mu.Unlock()

	c.store.SetSession(result.AccessToken, &result.User)
	c.log.Info().Str("user_id", result.User.ID).Str("redirect", redirect).Msg("auth: sesión iniciada")
	c.navigate(redirect)
}

// ── Recuperación de contraseña ────────────────────────────────────────────────

// BeginReset entra al flujo de recuperación desde cualquier paso de login.
func (c *Controller) BeginReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return
	}
	c.state = StateResetEmail{}
	c.errMsg = ""
}

// SubmitResetEmail pide el código vía POST /api/auth/password/reset-request
// y avanza al paso de código.
func (c *Controller) SubmitResetEmail(ctx context.Context, email string) {
	c.mu.Lock()
	_, ok := c.state.(StateResetEmail)
	c.mu.Unlock()
	if !ok || !c.begin(StateResetEmail{}) {
		return
	}

	if _, err := c.client.Request(ctx, "POST", "/api/auth/password/reset-request", dto.ResetRequest{Email: email}, nil); err != nil {
		c.fail(StateResetEmail{}, err)
		return
	}
	c.settle(StateResetCode{Email: email})
}

// SubmitResetCode almacena el código localmente y avanza, sin llamada de red:
// el backend solo lo verifica en la confirmación final.
func (c *Controller) SubmitResetCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	from, ok := c.state.(StateResetCode)
	if !ok || c.submitting {
		return
	}
	c.state = StateResetPassword{Email: from.Email, Code: code}
	c.errMsg = ""
}

// SubmitResetPassword confirma vía POST /api/auth/password/reset-confirm y,
// en éxito, vuelve al identifier con aviso de éxito.
func (c *Controller) SubmitResetPassword(ctx context.Context, newPassword string) {
	c.mu.Lock()
	from, ok := c.state.(StateResetPassword)
	c.mu.Unlock()
	if !ok || !c.begin(from) {
		return
	}

	body := dto.ResetConfirmRequest{Email: from.Email, ResetCode: from.Code, NewPassword: newPassword}
	if _, err := c.client.Request(ctx, "POST", "/api/auth/password/reset-confirm", body, nil); err != nil {
		c.fail(from, err)
		return
	}
	c.settle(StateIdentifier{Notice: "Contraseña restablecida. Inicia sesión con tu nueva contraseña."})
}

// ── Mecánica interna del FSM ──────────────────────────────────────────────────

// begin marca la transición a submitting. Devuelve false (y descarta el
// submit) si ya hay una petición en vuelo o el controlador fue cerrado.
func (c *Controller) begin(from State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting || c.closed {
		c.log.Debug().Msg("auth: submit descartado (petición en vuelo o controlador cerrado)")
		return false
	}
	c.submitting = true
	c.state = StateSubmitting{From: from}
	c.errMsg = ""
	return true
}

// settle fija el estado destino tras una resolución exitosa.
func (c *Controller) settle(to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.submitting = false
	c.state = to
	c.errMsg = ""
}

// fail vuelve al estado que produjo el error y lo expone. El estado previo
// al submit se conserva siempre en los caminos de rechazo.
func (c *Controller) fail(backTo State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.submitting = false
	c.state = backTo
	c.errMsg = apierror.Human(err)
	c.log.Debug().Err(err).Msg("auth: paso rechazado")
}

type unexpectedLoginType struct{ got string }

func (e *unexpectedLoginType) Error() string {
	return "tipo de login desconocido: " + e.got
}
