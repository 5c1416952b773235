package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vallmark/storefront-client/internal/application/access"
	"github.com/vallmark/storefront-client/internal/application/auth"
	"github.com/vallmark/storefront-client/internal/application/orders"
	"github.com/vallmark/storefront-client/internal/application/session"
	"github.com/vallmark/storefront-client/internal/infrastructure/api"
	"github.com/vallmark/storefront-client/internal/infrastructure/pdf"
	"github.com/vallmark/storefront-client/internal/infrastructure/storage"
	"github.com/vallmark/storefront-client/internal/interfaces/diag"
	"github.com/vallmark/storefront-client/pkg/config"
	"github.com/vallmark/storefront-client/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.URL).
		Msg("iniciando cliente")

	client := api.New(api.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
	}, nil, log)

	tokens := storage.NewFileTokenStore(cfg.Session.TokenPath)
	store := session.NewStore(client, tokens, log)

	// Restauración de sesión: verifica el token persistido contra /api/auth/me
	// y lo purga si no produce un usuario.
	ctx := context.Background()
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store.Initialize(initCtx)
	cancel()

	snap := store.Snapshot()
	if snap.User != nil {
		log.Info().
			Str("user", snap.User.Username).
			Str("role", string(snap.User.Role)).
			Strs("tabs", tabNames(snap)).
			Msg("sesión restaurada")
	} else {
		log.Info().Msg("sin sesión previa")
	}

	// Controladores raíz de la superficie embebedora.
	authCtrl := auth.NewController(client, store, func(path string) {
		log.Info().Str("path", path).Msg("navegando")
	}, log)
	defer authCtrl.Close()

	profileOps := auth.NewProfileOps(store, log)
	if snap.User != nil && profileOps.NeedsSetup() {
		log.Info().Msg("la cuenta restaurada no tiene contraseña establecida")
	}

	// Con sesión de administración, un fetch inicial deja el panel de
	// órdenes listo para la superficie embebedora.
	if access.CanEnterAdminConsole(snap) {
		ordersCtrl := orders.NewController(store, pdf.NewReceiptGenerator(), log)
		defer ordersCtrl.Close()

		fetchCtx, cancelFetch := context.WithTimeout(ctx, 10*time.Second)
		ordersCtrl.FetchList(fetchCtx)
		cancelFetch()

		if osnap := ordersCtrl.Snapshot(); osnap.Err != "" {
			log.Warn().Str("err", osnap.Err).Msg("listado inicial de órdenes falló")
		} else {
			log.Info().Int("total", osnap.Meta.Total).Msg("panel de órdenes listo")
		}
	}

	// Panel de diagnóstico solo fuera de producción.
	var diagServer *diag.Server
	if !cfg.App.IsProduction() {
		monitor := diag.NewMonitor(client, log)
		monitor.Start(ctx)
		defer monitor.Stop()

		diagServer = diag.NewServer(monitor, cfg.App.Name, log)
		go func() {
			if err := diagServer.Listen(cfg.Diag.Addr()); err != nil {
				log.Error().Err(err).Msg("panel de diagnóstico finalizado")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando...")

	if diagServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := diagServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del panel de diagnóstico")
		}
	}

	log.Info().Msg("cliente detenido")
}

// tabNames pestañas visibles de la sesión, para el log de arranque.
func tabNames(snap session.Snapshot) []string {
	if snap.User == nil {
		return nil
	}
	tabs := access.VisibleTabs(snap.User.Role)
	names := make([]string, 0, len(tabs))
	for _, t := range tabs {
		names = append(names, string(t))
	}
	return names
}
