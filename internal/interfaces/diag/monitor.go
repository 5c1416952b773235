// Package diag implementa el panel de diagnóstico fuera de producción:
// sondea la alcanzabilidad del backend cada 30 s y expone el resultado en
// un endpoint local de estado.
package diag

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/vallmark/storefront-client/internal/infrastructure/api"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// pollInterval cadencia del sondeo.
const pollInterval = 30 * time.Second

// checkTargets los tres endpoints que el panel vigila.
var checkTargets = []struct {
	name  string
	path  string
	query url.Values
}{
	{name: "health", path: "/api/health"},
	{name: "products", path: "/api/products/", query: url.Values{"per_page": []string{"1"}}},
	{name: "categories", path: "/api/products/categories/available"},
}

// Check resultado de una sonda individual.
type Check struct {
	Name      string        `json:"name"`
	Path      string        `json:"path"`
	Reachable bool          `json:"reachable"`
	Status    int           `json:"status,omitempty"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
}

// Snapshot estado agregado del backend visto por el panel.
type Snapshot struct {
	Backend   string    `json:"backend"`
	Checks    []Check   `json:"checks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Monitor sondea el backend en segundo plano.
type Monitor struct {
	client *api.Client
	log    *logger.Logger

	mu   sync.Mutex
	last Snapshot
	stop chan struct{}
	once sync.Once
}

// NewMonitor construye el monitor sobre un cliente sin credenciales.
func NewMonitor(client *api.Client, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	return &Monitor{client: client, log: log, stop: make(chan struct{})}
}

// Start lanza el sondeo periódico: una pasada inmediata y luego cada 30 s,
// hasta Stop o cancelación del contexto.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		m.poll(ctx)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.poll(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop detiene el sondeo.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
}

// Snapshot devuelve el último estado sondeado.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) poll(ctx context.Context) {
	checks := make([]Check, 0, len(checkTargets))
	for _, target := range checkTargets {
		start := time.Now()
		status, err := m.client.Ping(ctx, target.path, target.query)
		check := Check{
			Name:    target.name,
			Path:    target.path,
			Status:  status,
			Latency: time.Since(start) / time.Millisecond,
		}
		if err != nil {
			check.Error = err.Error()
		} else {
			check.Reachable = true
		}
		checks = append(checks, check)
	}

	m.mu.Lock()
	m.last = Snapshot{Backend: m.client.BaseURL(), Checks: checks, UpdatedAt: time.Now()}
	m.mu.Unlock()

	for _, c := range checks {
		if !c.Reachable {
			m.log.Warn().Str("check", c.Name).Str("error", c.Error).Msg("diag: backend no alcanzable")
		}
	}
}
