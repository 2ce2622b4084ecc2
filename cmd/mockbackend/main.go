package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/mockbackend"
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

	secret := cfg.JWT.Secret
	if secret == "" {
		if cfg.App.Env == "production" {
			log.Fatal().Msg("JWT_SECRET es obligatorio en production")
		}
		secret = "dev-secret"
		log.Warn().Msg("JWT_SECRET vacío, usando secreto de desarrollo")
	}

	srv, err := mockbackend.New(mockbackend.Config{
		Tokens: mockbackend.TokenConfig{
			Secret:     secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		Seed: true,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("backend de desarrollo")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Mock.Port)
	log.Info().
		Str("addr", addr).
		Str("demo_user", mockbackend.DemoEmail).
		Str("demo_admin", mockbackend.DemoAdmin).
		Msg("iniciando backend de desarrollo")

	go func() {
		if err := srv.App.Listen(addr); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.App.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	log.Info().Msg("backend de desarrollo detenido")
}
