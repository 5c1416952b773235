package diag

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vallmark/storefront-client/pkg/logger"
)

// Server endpoint local de estado del panel de diagnóstico. Solo se arranca
// fuera de producción.
type Server struct {
	app *fiber.App
	log *logger.Logger
}

// NewServer construye la app Fiber con el endpoint de estado.
func NewServer(monitor *Monitor, appName string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:               appName + " (diag)",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/debug/status", func(c *fiber.Ctx) error {
		return c.JSON(monitor.Snapshot())
	})

	return &Server{app: app, log: log}
}

// App expone la app Fiber (tests con app.Test).
func (s *Server) App() *fiber.App { return s.app }

// Listen bloquea sirviendo el endpoint de estado.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("diag: panel de estado escuchando")
	return s.app.Listen(addr)
}

// Shutdown apaga el servidor respetando el contexto.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
