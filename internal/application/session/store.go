// Package session implementa el estado de sesión de todo el proceso: token
// persistido + snapshot de usuario autenticado. Es la única fuente de verdad
// de "hay sesión iniciada" y el único estado mutable compartido del cliente.
package session

import (
	"context"
	"sync"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/internal/infrastructure/api"
	"github.com/vallmark/storefront-client/internal/infrastructure/storage"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// Snapshot observación inmutable del estado de sesión que reciben los observers.
type Snapshot struct {
	User    *entity.User
	Loading bool
	Err     error
}

// Authenticated invariante central: hay sesión ⇔ hay snapshot de usuario.
func (s Snapshot) Authenticated() bool { return s.User != nil }

// Observer recibe cada cambio de estado, de forma síncrona y en orden de suscripción.
type Observer func(Snapshot)

type subscriber struct {
	id int
	fn Observer
}

// Store estado de sesión del proceso. Toda mutación pasa por sus operaciones;
// el token persistido y el token en memoria nunca divergen.
type Store struct {
	client *api.Client
	tokens storage.TokenStore
	log    *logger.Logger

	mu          sync.Mutex
	token       string
	user        *entity.User
	loading     bool
	err         error
	initialized bool
	subs        []subscriber
	nextSubID   int
}

// NewStore construye el store. Loading arranca en true hasta que Initialize resuelva.
func NewStore(client *api.Client, tokens storage.TokenStore, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{client: client, tokens: tokens, log: log, loading: true}
}

// Token implementa api.TokenSource: el cliente autenticado lee siempre el
// token vigente de este store.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// AuthenticatedClient devuelve un cliente HTTP ligado al token vigente.
func (s *Store) AuthenticatedClient() *api.Client {
	return s.client.WithTokenSource(s)
}

// Snapshot devuelve la observación actual.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{User: s.user, Loading: s.loading, Err: s.err}
}

// IsAuthenticated indica si hay usuario en sesión.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().Authenticated()
}

// Subscribe registra un observer y devuelve su función de baja. El observer
// NO recibe el estado actual al suscribirse, solo los cambios posteriores.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Initialize restaura la sesión al arranque: lee el token persistido y, si
// existe, lo verifica con GET /api/auth/me. Cualquier fallo purga el token.
// Loading pasa a false solo cuando esto resuelve. Es idempotente: llamadas
// repetidas convergen a la misma observación (user, token).
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	token, err := s.tokens.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("sesión: leer token persistido")
		token = ""
	}
	if token == "" {
		s.adopt("", nil, nil)
		return
	}

	env, err := s.client.WithTokenSource(api.StaticToken(token)).
		AuthenticatedRequest(ctx, "GET", "/api/auth/me", nil, nil)
	if err != nil {
		// Un token sin snapshot de usuario recuperable se purga siempre,
		// sea 401, fallo de red o sobre malformado.
		s.log.Info().Err(err).Msg("sesión: token persistido no verificable, purgando")
		_ = s.tokens.Clear()
		s.adopt("", nil, nil)
		return
	}
	var user entity.User
	if err := env.Decode(&user); err != nil {
		s.log.Warn().Err(err).Msg("sesión: decodificar usuario de /api/auth/me")
		_ = s.tokens.Clear()
		s.adopt("", nil, nil)
		return
	}
	s.adopt(token, &user, nil)
}

// SetSession persiste el token, adopta el usuario y notifica.
func (s *Store) SetSession(token string, user *entity.User) {
	if err := s.tokens.Save(token); err != nil {
		s.log.Error().Err(err).Msg("sesión: persistir token")
	}
	s.adopt(token, user, nil)
}

// Clear purga el token y deja la sesión vacía.
func (s *Store) Clear() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Error().Err(err).Msg("sesión: purgar token")
	}
	s.adopt("", nil, nil)
}

// UpdateUser reemplaza el snapshot cacheado (tras una edición de perfil).
func (s *Store) UpdateUser(user *entity.User) {
	s.mu.Lock()
	s.user = user
	snap, subs := s.observationLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// Logout avisa al backend (mejor esfuerzo) y limpia la sesión en cualquier caso.
func (s *Store) Logout(ctx context.Context) {
	if _, err := s.AuthenticatedClient().AuthenticatedRequest(ctx, "POST", "/api/auth/logout", nil, nil); err != nil {
		s.log.Debug().Err(err).Msg("sesión: logout remoto falló, limpiando igual")
	}
	s.Clear()
}

// PublishAutoLogin canal tipado para el auto-login entre ventanas
// (equivalente del evento userAutoLoggedIn): la única vía externa de
// escritura hacia el store fuera de sus operaciones.
func (s *Store) PublishAutoLogin(token string, user *entity.User) {
	s.log.Info().Str("user_id", user.ID).Msg("sesión: auto-login publicado")
	s.SetSession(token, user)
}

// HandleAuthError limpia la sesión si el error es de clase unauthorized.
// Devuelve true si la sesión fue limpiada. Los controladores enrutan por
// aquí todo fallo de llamada autenticada.
func (s *Store) HandleAuthError(err error) bool {
	if !apierror.IsUnauthorized(err) {
		return false
	}
	s.log.Info().Msg("sesión: credencial rechazada por el backend, cerrando sesión")
	s.Clear()
	return true
}

// adopt fija (token, user, err), marca loading=false y notifica.
func (s *Store) adopt(token string, user *entity.User, err error) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.err = err
	s.loading = false
	snap, subs := s.observationLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// observationLocked copia snapshot y suscriptores bajo lock; la notificación
// ocurre fuera del lock para que un observer pueda reentrar al store.
func (s *Store) observationLocked() (Snapshot, []subscriber) {
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	return Snapshot{User: s.user, Loading: s.loading, Err: s.err}, subs
}

func notify(subs []subscriber, snap Snapshot) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}
