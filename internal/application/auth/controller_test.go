package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vallmark/storefront-client/internal/application/auth"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/infrastructure/api"
	"github.com/vallmark/storefront-client/internal/infrastructure/storage"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend falso de autenticación
// ──────────────────────────────────────────────────────────────────────────────

// fakeAuthBackend backend de autenticación configurable por ruta. Registra
// cada petición recibida para que los tests verifiquen el tráfico exacto.
type fakeAuthBackend struct {
	t *testing.T

	detectType    string // "email" o "phone"
	rejectLogin   bool   // POST /api/auth/login responde 401
	failOTPSend   bool   // POST /api/otp/send responde 500
	rejectOTP     bool   // POST /api/auth/login/mobile responde 401
	failReset     bool   // reset-request responde 500
	rejectConfirm bool   // reset-confirm responde 422

	requests []string // método+ruta en orden de llegada
	lastForm map[string]string
}

func (f *fakeAuthBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/auth/login/detect":
			var req struct {
				Identifier string `json:"identifier"`
			}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
			writeEnvelope(w, map[string]string{
				"login_type": f.detectType,
				"identifier": req.Identifier,
			})
		case "/api/otp/send":
			if f.failOTPSend {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"sms caido"}`))
				return
			}
			writeEnvelope(w, map[string]bool{"sent": true})
		case "/api/auth/login":
			require.NoError(f.t, r.ParseForm())
			f.lastForm = map[string]string{
				"username": r.PostForm.Get("username"),
				"password": r.PostForm.Get("password"),
			}
			if f.rejectLogin {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"credenciales incorrectas"}`))
				return
			}
			writeLoginResult(w)
		case "/api/auth/login/mobile":
			if f.rejectOTP {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"código incorrecto"}`))
				return
			}
			writeLoginResult(w)
		case "/api/auth/password/reset-request":
			if f.failReset {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"no se pudo enviar el correo"}`))
				return
			}
			writeEnvelope(w, map[string]bool{"sent": true})
		case "/api/auth/password/reset-confirm":
			if f.rejectConfirm {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"código inválido o expirado"}`))
				return
			}
			writeEnvelope(w, map[string]bool{"reset": true})
		case "/api/auth/register":
			writeEnvelope(w, map[string]string{"id": "u9"})
		default:
			f.t.Fatalf("ruta inesperada: %s %s", r.Method, r.URL.Path)
		}
	}
}

func writeEnvelope(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	_, _ = w.Write([]byte(`{"success":true,"data":` + string(raw) + `}`))
}

func writeLoginResult(w http.ResponseWriter) {
	writeEnvelope(w, map[string]any{
		"access_token": "tok-login",
		"user": map[string]any{
			"id": "u1", "username": "ana", "role": "admin",
			"is_active": true, "has_password": true,
		},
	})
}

// testRig controlador + store + navegación registrada sobre el backend falso.
type testRig struct {
	ctrl    *auth.Controller
	store   *session.Store
	backend *fakeAuthBackend
	visited []string
}

func newRig(t *testing.T, backend *fakeAuthBackend) *testRig {
	t.Helper()
	backend.t = t
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.New(api.Config{BaseURL: srv.URL}, nil, logger.Nop())
	store := session.NewStore(client, storage.NewMemoryTokenStore(), logger.Nop())

	rig := &testRig{store: store, backend: backend}
	rig.ctrl = auth.NewController(client, store, func(path string) {
		rig.visited = append(rig.visited, path)
	}, logger.Nop())
	t.Cleanup(rig.ctrl.Close)
	return rig
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino email/contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_EmailCaminoFeliz(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email"})
	ctx := context.Background()

	rig.ctrl.SubmitIdentifier(ctx, "ana@vallmark.com")
	st, ok := rig.ctrl.State().(auth.StatePassword)
	require.True(t, ok, "el identificador email avanza al paso password")
	assert.Equal(t, "ana@vallmark.com", st.Identifier)

	rig.ctrl.SubmitPassword(ctx, "Secreta99")
	assert.IsType(t, auth.StateDone{}, rig.ctrl.State())
	assert.Empty(t, rig.ctrl.Error())

	// El intercambio de credenciales viaja form-encoded con el identificador detectado.
	assert.Equal(t, "ana@vallmark.com", rig.backend.lastForm["username"])
	assert.Equal(t, "Secreta99", rig.backend.lastForm["password"])

	// Sesión adoptada y navegación a la ruta por defecto.
	assert.True(t, rig.store.IsAuthenticated())
	assert.Equal(t, "tok-login", rig.store.Token())
	assert.Equal(t, []string{"/"}, rig.visited)
}

func TestLogin_RespetaLaRutaGuardada(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email"})
	ctx := context.Background()

	rig.ctrl.SetRedirect("/admin/orders")
	rig.ctrl.SubmitIdentifier(ctx, "ana@vallmark.com")
	rig.ctrl.SubmitPassword(ctx, "Secreta99")

	assert.Equal(t, []string{"/admin/orders"}, rig.visited,
		"tras el login se navega a la ruta originalmente pedida")
}

// La contraseña incorrecta vuelve al paso password con el identificador
// intacto; la sesión no se toca y no hay navegación.
func TestLogin_PasswordIncorrecta_VuelveAlPaso(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email", rejectLogin: true})
	ctx := context.Background()

	rig.ctrl.SubmitIdentifier(ctx, "ana@vallmark.com")
	rig.ctrl.SubmitPassword(ctx, "equivocada")

	st, ok := rig.ctrl.State().(auth.StatePassword)
	require.True(t, ok, "el rechazo conserva el paso previo al submit")
	assert.Equal(t, "ana@vallmark.com", st.Identifier)
	assert.Equal(t, "credenciales incorrectas", rig.ctrl.Error())
	assert.False(t, rig.store.IsAuthenticated())
	assert.Empty(t, rig.visited)
}

func TestLogin_FalloDeDetect_PermaneceEnIdentifier(t *testing.T) {
	ctrl := auth.NewController(
		api.New(api.Config{BaseURL: "http://127.0.0.1:1"}, nil, logger.Nop()),
		session.NewStore(api.New(api.Config{BaseURL: "http://127.0.0.1:1"}, nil, logger.Nop()), storage.NewMemoryTokenStore(), logger.Nop()),
		nil, logger.Nop())

	ctrl.SubmitIdentifier(context.Background(), "ana@vallmark.com")

	assert.IsType(t, auth.StateIdentifier{}, ctrl.State())
	assert.NotEmpty(t, ctrl.Error())
}

// SubmitPassword fuera del paso password es un no-op.
func TestLogin_SubmitPasswordFueraDePaso(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email"})

	rig.ctrl.SubmitPassword(context.Background(), "Secreta99")

	assert.IsType(t, auth.StateIdentifier{}, rig.ctrl.State())
	assert.Empty(t, rig.backend.requests, "sin paso password no hay tráfico")
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino teléfono/OTP
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_TelefonoCaminoOTP(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "phone"})
	ctx := context.Background()

	rig.ctrl.SubmitIdentifier(ctx, "9876543210")
	st, ok := rig.ctrl.State().(auth.StateOTP)
	require.True(t, ok, "el identificador teléfono avanza al paso otp")
	assert.Equal(t, "9876543210", st.Phone)
	assert.Contains(t, rig.backend.requests, "POST /api/otp/send",
		"el paso otp exige el envío previo del código")

	rig.ctrl.SubmitOTP(ctx, "123456")
	assert.IsType(t, auth.StateDone{}, rig.ctrl.State())
	assert.True(t, rig.store.IsAuthenticated())
	assert.Equal(t, []string{"/"}, rig.visited)
}

// Si el envío del OTP falla, no se avanza: quedarse en identifier evita un
// paso otp sin código en tránsito.
func TestLogin_EnvioOTPFalla_PermaneceEnIdentifier(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "phone", failOTPSend: true})

	rig.ctrl.SubmitIdentifier(context.Background(), "9876543210")

	assert.IsType(t, auth.StateIdentifier{}, rig.ctrl.State())
	assert.NotEmpty(t, rig.ctrl.Error())
}

func TestLogin_OTPIncorrecto_VuelveAlPasoOTP(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "phone", rejectOTP: true})
	ctx := context.Background()

	rig.ctrl.SubmitIdentifier(ctx, "9876543210")
	rig.ctrl.SubmitOTP(ctx, "000000")

	st, ok := rig.ctrl.State().(auth.StateOTP)
	require.True(t, ok)
	assert.Equal(t, "9876543210", st.Phone)
	assert.Equal(t, "código incorrecto", rig.ctrl.Error())
	assert.False(t, rig.store.IsAuthenticated())
}

func TestLogin_ResendOTP(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "phone"})
	ctx := context.Background()

	rig.ctrl.SubmitIdentifier(ctx, "9876543210")
	require.NoError(t, rig.ctrl.ResendOTP(ctx))

	sends := 0
	for _, req := range rig.backend.requests {
		if req == "POST /api/otp/send" {
			sends++
		}
	}
	assert.Equal(t, 2, sends, "el reenvío dispara un segundo send sin cambiar de paso")
	assert.IsType(t, auth.StateOTP{}, rig.ctrl.State())
}

// ──────────────────────────────────────────────────────────────────────────────
// Recuperación de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestReset_FlujoCompleto(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email"})
	ctx := context.Background()

	rig.ctrl.BeginReset()
	assert.IsType(t, auth.StateResetEmail{}, rig.ctrl.State())

	rig.ctrl.SubmitResetEmail(ctx, "ana@vallmark.com")
	st, ok := rig.ctrl.State().(auth.StateResetCode)
	require.True(t, ok)
	assert.Equal(t, "ana@vallmark.com", st.Email)

	before := len(rig.backend.requests)
	rig.ctrl.SubmitResetCode("424242")
	assert.Len(t, rig.backend.requests, before,
		"el paso de código no toca la red: solo la confirmación final lo verifica")
	pw, ok := rig.ctrl.State().(auth.StateResetPassword)
	require.True(t, ok)
	assert.Equal(t, "424242", pw.Code)

	rig.ctrl.SubmitResetPassword(ctx, "NuevaClave1")
	done, ok := rig.ctrl.State().(auth.StateIdentifier)
	require.True(t, ok, "el reset exitoso vuelve al identifier")
	assert.NotEmpty(t, done.Notice, "con aviso de éxito visible")
	assert.Contains(t, rig.backend.requests, "POST /api/auth/password/reset-confirm")
}

func TestReset_CodigoRechazado_ConservaElPaso(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email", rejectConfirm: true})
	ctx := context.Background()

	rig.ctrl.BeginReset()
	rig.ctrl.SubmitResetEmail(ctx, "ana@vallmark.com")
	rig.ctrl.SubmitResetCode("000000")
	rig.ctrl.SubmitResetPassword(ctx, "NuevaClave1")

	assert.IsType(t, auth.StateResetPassword{}, rig.ctrl.State(),
		"el rechazo conserva el paso para reintentar")
	assert.Equal(t, "código inválido o expirado", rig.ctrl.Error())
}

// ──────────────────────────────────────────────────────────────────────────────
// Mecánica del FSM
// ──────────────────────────────────────────────────────────────────────────────

func TestRestart_VuelveAlIdentifierLimpio(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email", rejectLogin: true})
	ctx := context.Background()

	rig.ctrl.SubmitIdentifier(ctx, "ana@vallmark.com")
	rig.ctrl.SubmitPassword(ctx, "equivocada")
	require.NotEmpty(t, rig.ctrl.Error())

	rig.ctrl.Restart()
	assert.IsType(t, auth.StateIdentifier{}, rig.ctrl.State())
	assert.Empty(t, rig.ctrl.Error())
}

// Tras Close los submits se descartan sin tráfico ni mutación.
func TestClose_DescartaSubmits(t *testing.T) {
	rig := newRig(t, &fakeAuthBackend{detectType: "email"})

	rig.ctrl.Close()
	rig.ctrl.SubmitIdentifier(context.Background(), "ana@vallmark.com")

	assert.Empty(t, rig.backend.requests)
	assert.IsType(t, auth.StateIdentifier{}, rig.ctrl.State())
}

// ──────────────────────────────────────────────────────────────────────────────
// Single-flight: a lo sumo una petición en vuelo
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitPassword_DescartaEnviosConcurrentes(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	var mu sync.Mutex
	logins := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login/detect":
			writeEnvelope(w, map[string]any{
				"login_type": "email", "identifier": "ana@vallmark.com", "requires": "password",
			})
		case "/api/auth/login":
			mu.Lock()
			logins++
			mu.Unlock()
			entered <- struct{}{}
			<-release
			writeLoginResult(w)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.New(api.Config{BaseURL: srv.URL}, nil, logger.Nop())
	store := session.NewStore(client, storage.NewMemoryTokenStore(), logger.Nop())
	ctrl := auth.NewController(client, store, func(string) {}, logger.Nop())
	t.Cleanup(ctrl.Close)

	ctx := context.Background()
	ctrl.SubmitIdentifier(ctx, "ana@vallmark.com")
	require.IsType(t, auth.StatePassword{}, ctrl.State())

	done := make(chan struct{})
	go func() {
		ctrl.SubmitPassword(ctx, "Secreta99")
		close(done)
	}()
	<-entered // el intercambio de credenciales quedó en vuelo

	ctrl.SubmitPassword(ctx, "Secreta99")

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, logins, "el segundo submit se descarta, no se encola")
	assert.IsType(t, auth.StateDone{}, ctrl.State())
	assert.True(t, store.IsAuthenticated())
}
