package orders_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/application/orders"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/domain"
	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/internal/infrastructure/api"
	"github.com/vallmark/storefront-client/internal/infrastructure/storage"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend falso del panel de órdenes
// ──────────────────────────────────────────────────────────────────────────────

// fakeOrdersBackend sirve listado, detalle y PUT de órdenes, registrando el
// tráfico exacto que recibe.
type fakeOrdersBackend struct {
	t *testing.T

	failList   bool // el listado responde 500
	reject401  bool // todo responde 401
	orderNotes string

	listQueries []url.Values
	putBodies   []map[string]any
}

func (f *fakeOrdersBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f.reject401 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expirado"}`))
			return
		}
		switch {
		case r.URL.Path == "/api/orders/admin/all":
			if f.failList {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"boom"}`))
				return
			}
			f.listQueries = append(f.listQueries, r.URL.Query())
			_, _ = w.Write([]byte(`{"success":true,"data":[
				{"id":"o1","order_number":"VM-1001","status":"pending","final_amount":"1250.50","created_at":"2026-08-01T09:00:00Z"},
				{"id":"o2","order_number":"VM-1002","status":"shipped","final_amount":"890.00","created_at":"2026-08-02T09:00:00Z"}
			],"page":1,"per_page":10,"total":35,"total_pages":4}`))
		case strings.HasPrefix(r.URL.Path, "/api/orders/") && r.Method == http.MethodGet:
			f.writeOrder(w, strings.TrimPrefix(r.URL.Path, "/api/orders/"))
		case strings.HasPrefix(r.URL.Path, "/api/orders/") && r.Method == http.MethodPut:
			var body map[string]any
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
			f.putBodies = append(f.putBodies, body)
			f.writeOrder(w, strings.TrimPrefix(r.URL.Path, "/api/orders/"))
		default:
			f.t.Fatalf("ruta inesperada: %s %s", r.Method, r.URL.Path)
		}
	}
}

func (f *fakeOrdersBackend) writeOrder(w http.ResponseWriter, id string) {
	order := map[string]any{
		"id": id, "order_number": "VM-1001", "status": "pending",
		"final_amount": "1250.50", "created_at": "2026-08-01T09:00:00Z",
	}
	if f.orderNotes != "" {
		order["notes"] = f.orderNotes
	}
	raw, _ := json.Marshal(order)
	_, _ = w.Write([]byte(`{"success":true,"data":` + string(raw) + `}`))
}

// fakeReceipts generador de recibos de prueba.
type fakeReceipts struct {
	lastOrder *entity.Order
}

func (f *fakeReceipts) GenerateOrderReceipt(order *entity.Order) ([]byte, error) {
	f.lastOrder = order
	return []byte("%PDF-falso"), nil
}

func newOrdersController(t *testing.T, backend *fakeOrdersBackend) (*orders.Controller, *session.Store) {
	t.Helper()
	backend.t = t
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.New(api.Config{BaseURL: srv.URL}, nil, logger.Nop())
	store := session.NewStore(client, storage.NewMemoryTokenStore(), logger.Nop())
	store.SetSession("tok-admin", &entity.User{ID: "u1", Username: "ana", Role: entity.RoleAdmin})

	ctrl := orders.NewController(store, &fakeReceipts{}, logger.Nop())
	t.Cleanup(ctrl.Close)
	return ctrl, store
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestFetchList_AdoptaOrdenesYPaginacion(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)

	ctrl.FetchList(context.Background())

	snap := ctrl.Snapshot()
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, "VM-1001", snap.Orders[0].OrderNumber)
	assert.Equal(t, 35, snap.Meta.Total)
	assert.Equal(t, 4, snap.Meta.TotalPages)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)

	// Primera carga: página 1, tamaño 10, sin filtros.
	q := backend.listQueries[0]
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "10", q.Get("per_page"))
	assert.Empty(t, q.Get("status"))
}

// El fallo del listado no toca los datos existentes: solo expone el error.
func TestFetchList_FalloConservaElEstado(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.FetchList(ctx)
	require.Len(t, ctrl.Snapshot().Orders, 2)

	backend.failList = true
	ctrl.FetchList(ctx)

	snap := ctrl.Snapshot()
	assert.Len(t, snap.Orders, 2, "las órdenes previas sobreviven al fallo")
	assert.Equal(t, 35, snap.Meta.Total, "la paginación previa también")
	assert.NotEmpty(t, snap.Err)
	assert.False(t, snap.Loading)
}

// Un 401 en el listado expulsa la sesión completa.
func TestFetchList_CredencialRechazada_CierraSesion(t *testing.T) {
	backend := &fakeOrdersBackend{reject401: true}
	ctrl, store := newOrdersController(t, backend)

	ctrl.FetchList(context.Background())

	assert.False(t, store.IsAuthenticated(), "el 401 limpia el Session Store")
	assert.NotEmpty(t, ctrl.Snapshot().Err)
}

func TestSetFilters_VuelveAPagina1(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.FetchList(ctx)
	ctrl.SetPage(ctx, 3)
	require.Equal(t, "3", backend.listQueries[1].Get("page"))

	ctrl.SetFilters(ctx, dto.OrderFilters{Status: entity.StatusShipped, Search: "VM-10"})

	q := backend.listQueries[2]
	assert.Equal(t, "1", q.Get("page"), "cambiar filtros resetea a la página 1")
	assert.Equal(t, "shipped", q.Get("status"))
	assert.Equal(t, "VM-10", q.Get("search"))
}

func TestSetPage_FueraDeRangoSeIgnora(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.FetchList(ctx) // total_pages = 4
	before := len(backend.listQueries)

	ctrl.SetPage(ctx, 0)
	ctrl.SetPage(ctx, 99)
	ctrl.PrevPage(ctx) // en página 1: deshabilitado

	assert.Len(t, backend.listQueries, before, "las páginas fuera de rango no generan tráfico")
}

func TestNextPrevPage_RecorrenElRango(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.FetchList(ctx)
	ctrl.NextPage(ctx)
	assert.Equal(t, "2", backend.listQueries[1].Get("page"))

	ctrl.PrevPage(ctx)
	assert.Equal(t, "1", backend.listQueries[2].Get("page"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Detalle y diálogos
// ──────────────────────────────────────────────────────────────────────────────

func TestOpenDetails_SeleccionaYAbreElDialogo(t *testing.T) {
	ctrl, _ := newOrdersController(t, &fakeOrdersBackend{})

	ctrl.OpenDetails(context.Background(), "o1")

	snap := ctrl.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "o1", snap.Selected.ID)
	assert.Equal(t, orders.DialogDetails, snap.Dialog)
}

func TestDialogos_ExigenOrdenSeleccionada(t *testing.T) {
	ctrl, _ := newOrdersController(t, &fakeOrdersBackend{})

	ctrl.OpenStatusDialog()
	assert.Equal(t, orders.DialogNone, ctrl.Snapshot().Dialog,
		"sin orden seleccionada no se abre diálogo")

	ctrl.OpenDetails(context.Background(), "o1")
	ctrl.OpenStatusDialog()
	assert.Equal(t, orders.DialogStatusUpdate, ctrl.Snapshot().Dialog)

	ctrl.CloseDialog()
	assert.Equal(t, orders.DialogNone, ctrl.Snapshot().Dialog)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambio de estado: el PUT lleva exactamente los campos provistos
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_SoloStatus(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.OpenDetails(ctx, "o1")
	require.NoError(t, ctrl.UpdateStatus(ctx, dto.StatusUpdate{Status: entity.StatusProcessing}))

	require.Len(t, backend.putBodies, 1)
	assert.Equal(t, map[string]any{"status": "processing"}, backend.putBodies[0],
		"sin efectos opcionales el cuerpo lleva únicamente status")
}

func TestUpdateStatus_ConEfectosDeEnvio(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.OpenDetails(ctx, "o1")
	require.NoError(t, ctrl.UpdateStatus(ctx, dto.StatusUpdate{
		Status:           entity.StatusShipped,
		TrackingNumber:   "TRK-778899",
		ExpectedDelivery: "2026-09-05",
	}))

	require.Len(t, backend.putBodies, 1)
	assert.Equal(t, map[string]any{
		"status":                 "shipped",
		"tracking_number":        "TRK-778899",
		"expected_delivery_date": "2026-09-05",
	}, backend.putBodies[0], "solo los campos provistos viajan; notes no aparece")
}

func TestUpdateStatus_RefrescaListadoYDetalle(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.OpenDetails(ctx, "o1")
	ctrl.FetchList(ctx)
	before := len(backend.listQueries)

	require.NoError(t, ctrl.UpdateStatus(ctx, dto.StatusUpdate{Status: entity.StatusDelivered}))

	assert.Len(t, backend.listQueries, before+1, "tras la mutación se relanza el listado")
	snap := ctrl.Snapshot()
	assert.Equal(t, orders.DialogDetails, snap.Dialog, "el detalle se reabre con datos frescos")
	require.NotNil(t, snap.Selected)
}

func TestUpdateStatus_EstadoDesconocidoSeRechazaLocalmente(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.OpenDetails(ctx, "o1")
	err := ctrl.UpdateStatus(ctx, dto.StatusUpdate{Status: "enviadisima"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, backend.putBodies, "el estado fuera del conjunto cerrado no genera tráfico")
}

func TestUpdateStatus_SinSeleccion(t *testing.T) {
	ctrl, _ := newOrdersController(t, &fakeOrdersBackend{})
	err := ctrl.UpdateStatus(context.Background(), dto.StatusUpdate{Status: entity.StatusPending})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Línea de tiempo de notas
// ──────────────────────────────────────────────────────────────────────────────

func TestAppendNote_PrimeraNota(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.SetClock(func() time.Time {
		return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	})
	ctrl.OpenDetails(ctx, "o1")
	require.NoError(t, ctrl.AppendNote(ctx, dto.NoteInput{Text: "cliente pidió envoltorio de regalo"}))

	require.Len(t, backend.putBodies, 1)
	assert.Equal(t,
		map[string]any{"notes": "[2026-08-28T10:30:00Z] cliente pidió envoltorio de regalo"},
		backend.putBodies[0],
		"el PUT lleva únicamente notes, con la línea timestamped")
}

func TestAppendNote_ConservaLasNotasAnteriores(t *testing.T) {
	backend := &fakeOrdersBackend{orderNotes: "[2026-08-27T08:00:00Z] pago confirmado"}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.SetClock(func() time.Time {
		return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	})
	ctrl.OpenDetails(ctx, "o1")
	require.NoError(t, ctrl.AppendNote(ctx, dto.NoteInput{Text: "despachado por mensajería"}))

	require.Len(t, backend.putBodies, 1)
	assert.Equal(t,
		map[string]any{"notes": "[2026-08-27T08:00:00Z] pago confirmado\n[2026-08-28T10:30:00Z] despachado por mensajería"},
		backend.putBodies[0],
		"la nota nueva se concatena a las anteriores, nunca las reemplaza")
}

func TestAppendNote_VaciaSeRechaza(t *testing.T) {
	backend := &fakeOrdersBackend{}
	ctrl, _ := newOrdersController(t, backend)
	ctx := context.Background()

	ctrl.OpenDetails(ctx, "o1")
	err := ctrl.AppendNote(ctx, dto.NoteInput{Text: ""})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, backend.putBodies)
}

// ──────────────────────────────────────────────────────────────────────────────
// Exportación de recibo
// ──────────────────────────────────────────────────────────────────────────────

func TestExportReceipt_GeneraSobreLaSeleccion(t *testing.T) {
	receipts := &fakeReceipts{}
	backend := &fakeOrdersBackend{}
	backend.t = t
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := api.New(api.Config{BaseURL: srv.URL}, nil, logger.Nop())
	store := session.NewStore(client, storage.NewMemoryTokenStore(), logger.Nop())
	store.SetSession("tok", &entity.User{ID: "u1", Role: entity.RoleAdmin})
	ctrl := orders.NewController(store, receipts, logger.Nop())

	ctrl.OpenDetails(context.Background(), "o1")
	pdf, err := ctrl.ExportReceipt()

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-falso"), pdf)
	require.NotNil(t, receipts.lastOrder)
	assert.Equal(t, "o1", receipts.lastOrder.ID)
}

func TestExportReceipt_SinSeleccion(t *testing.T) {
	ctrl, _ := newOrdersController(t, &fakeOrdersBackend{})
	_, err := ctrl.ExportReceipt()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Etiquetas de presentación
// ──────────────────────────────────────────────────────────────────────────────

func TestStyleFor_TablaCerrada(t *testing.T) {
	assert.Equal(t, "Shipped", orders.StyleFor(entity.StatusShipped).Label)
	assert.Equal(t, "violet", orders.StyleFor(entity.StatusShipped).Color)

	neutro := orders.StyleFor("algo-raro")
	assert.Equal(t, "gray", neutro.Color, "valores fuera del conjunto caen al estilo neutro")
}

func TestShowingLabel(t *testing.T) {
	snap := orders.Snapshot{Meta: dto.PageMeta{Page: 2, PerPage: 10, Total: 35, TotalPages: 4}}
	assert.Equal(t, "11–20 of 35", snap.ShowingLabel())

	vacio := orders.Snapshot{}
	assert.Equal(t, "0 of 0", vacio.ShowingLabel())
}

// ──────────────────────────────────────────────────────────────────────────────
// Single-flight: a lo sumo una petición en vuelo por controlador
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_DescartaEnviosConcurrentes(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	var mu sync.Mutex
	puts := 0

	const orderJSON = `{"id":"o1","order_number":"VM-1001","status":"pending","final_amount":"1250.50","created_at":"2026-08-01T09:00:00Z"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			mu.Lock()
			puts++
			mu.Unlock()
			entered <- struct{}{}
			<-release
			_, _ = w.Write([]byte(`{"success":true,"data":` + orderJSON + `}`))
		case r.URL.Path == "/api/orders/admin/all":
			_, _ = w.Write([]byte(`{"success":true,"data":[],"page":1,"per_page":10,"total":0,"total_pages":0}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"data":` + orderJSON + `}`))
		}
	}))
	t.Cleanup(srv.Close)

	client := api.New(api.Config{BaseURL: srv.URL}, nil, logger.Nop())
	store := session.NewStore(client, storage.NewMemoryTokenStore(), logger.Nop())
	store.SetSession("tok-admin", &entity.User{ID: "u1", Username: "ana", Role: entity.RoleAdmin})
	ctrl := orders.NewController(store, &fakeReceipts{}, logger.Nop())
	t.Cleanup(ctrl.Close)

	ctx := context.Background()
	ctrl.OpenDetails(ctx, "o1")
	require.NotNil(t, ctrl.Snapshot().Selected)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.UpdateStatus(ctx, dto.StatusUpdate{Status: entity.StatusProcessing})
	}()
	<-entered // la primera petición quedó en vuelo

	err := ctrl.UpdateStatus(ctx, dto.StatusUpdate{Status: entity.StatusShipped})
	assert.ErrorIs(t, err, domain.ErrRequestInFlight,
		"el segundo envío se descarta, no se encola")

	close(release)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, puts, "el backend vio un único PUT")
}
