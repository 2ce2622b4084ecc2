package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-pos/internal/application/guard"
	"github.com/jhoicas/Inventario-pos/internal/application/session"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/api"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("api", cfg.API.BaseURL).
		Msg("iniciando terminal")

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente del backend")
	}

	routes := session.Routes{
		Login:      cfg.Routes.Login,
		AdminEntry: cfg.Routes.AdminEntry,
		Public:     cfg.Routes.Public,
	}
	machine := session.NewMachine(client, routes, log)
	generalGuard := guard.NewGeneralGuard(machine, routes)
	adminGuard := guard.NewAdminGuard(client, routes, log)

	// Canal realtime: sigue a la sesión de tienda.
	events := log.Component("realtime_events")
	rt := realtime.NewManager(cfg.API.RealtimeEndpoint(), func(ch *realtime.Channel) {
		ch.OnAny(func(ev entity.Event) {
			events.Info().Str("event", string(ev.Name())).Str("store_id", ch.StoreID()).Msg("evento recibido")
		})
		ch.OnError(func(e entity.ErrorEvent) {
			events.Warn().Str("store_id", ch.StoreID()).Msg(e.Message)
		})
	}, log)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sessions, unsubscribe := machine.Subscribe()
	defer unsubscribe()
	go rt.Bind(ctx, sessions)

	if _, err := machine.CheckSession(ctx); err != nil {
		log.Info().Err(err).Msg("sin sesión previa")
	}

	tracker := &httpRouter.PathTracker{}
	go machine.RefreshLoop(ctx, cfg.Session.RefreshInterval, tracker.Current, func(in session.Intent) {
		log.Warn().Str("redirect_to", in.RedirectTo).Msg("sesión expirada, se requiere volver a iniciar sesión")
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Machine:      machine,
		GeneralGuard: generalGuard,
		AdminGuard:   adminGuard,
		Realtime:     rt,
		Routes:       routes,
		Tracker:      tracker,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando terminal...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := rt.Close(); err != nil {
		log.Error().Err(err).Msg("cierre del canal realtime")
	}

	log.Info().Msg("terminal detenida")
}
