package mockbackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/realtime"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Config del backend de desarrollo.
type Config struct {
	Tokens TokenConfig
	Seed   bool // carga tiendas y usuarios de demo
}

// Datos de demo cuando Config.Seed está activo.
const (
	DemoStoreID   = "s1"
	DemoEmail     = "owner@store.pk"
	DemoAdmin     = "admin@store.pk"
	DemoPassword  = "secret"
	SecondStoreID = "s2"
	SecondEmail   = "manager@second.pk"
)

// Server backend de desarrollo: contrato /api/auth/*, /api/store y /api/realtime.
type Server struct {
	App       *fiber.App
	Directory *Directory
	Tokens    *Tokens
	Hub       *Hub
}

// New arma la app fiber del backend de desarrollo.
func New(cfg Config, log *logger.Logger) (*Server, error) {
	if cfg.Tokens.Secret == "" {
		return nil, fmt.Errorf("mockbackend: JWT secret vacío")
	}
	if cfg.Tokens.ExpMinutes <= 0 {
		cfg.Tokens.ExpMinutes = 60
	}
	dir := NewDirectory()
	if cfg.Seed {
		if err := seed(dir); err != nil {
			return nil, fmt.Errorf("mockbackend: seed: %w", err)
		}
	}
	s := &Server{
		App:       fiber.New(fiber.Config{AppName: "inventario-pos-mock", DisableStartupMessage: true}),
		Directory: dir,
		Tokens:    NewTokens(cfg.Tokens),
		Hub:       NewHub(dir, log),
	}
	s.App.Use(recover.New())
	s.routes(time.Duration(cfg.Tokens.ExpMinutes) * time.Minute)
	return s, nil
}

func (s *Server) routes(ttl time.Duration) {
	h := &handler{dir: s.Directory, tokens: s.Tokens, ttl: ttl}

	api := s.App.Group("/api")
	auth := api.Group("/auth")
	auth.Post("/login", h.login)
	auth.Get("/me", h.me)
	auth.Post("/refresh", h.refresh)
	auth.Post("/logout", h.logout)
	auth.Post("/admin-login", h.adminLogin)
	auth.Get("/admin-login/verify", h.adminVerify)
	auth.Post("/admin-login/logout", h.adminLogout)
	api.Get("/store", h.store)

	api.Use("/realtime", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/realtime", websocket.New(s.Hub.Serve))

	api.Post("/dev/events", s.injectEvent)
}

// injectEvent POST /api/dev/events {"storeId", "event", "data"}: difunde un evento a la tienda.
func (s *Server) injectEvent(c *fiber.Ctx) error {
	var target struct {
		StoreID string `json:"storeId"`
	}
	if err := json.Unmarshal(c.Body(), &target); err != nil || target.StoreID == "" {
		return fail(c, fiber.StatusBadRequest, "storeId es requerido")
	}
	ev, err := realtime.Decode(c.Body())
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEvent) {
			return fail(c, fiber.StatusBadRequest, "evento desconocido")
		}
		return fail(c, fiber.StatusBadRequest, "payload inválido")
	}
	sent, err := s.Hub.Broadcast(target.StoreID, ev)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return ok(c, fiber.Map{"delivered": sent})
}

func seed(dir *Directory) error {
	stores := []entity.StoreSummary{
		{ID: DemoStoreID, Name: "Demo Store", Currency: "PKR", Address: "Mall Road, Lahore"},
		{ID: SecondStoreID, Name: "Second Store", Currency: "PKR"},
	}
	for _, st := range stores {
		if err := dir.AddStore(st); err != nil {
			return err
		}
	}
	users := []struct{ email, role, store string }{
		{DemoEmail, entity.RoleOwner, DemoStoreID},
		{"cashier@store.pk", entity.RoleCashier, DemoStoreID},
		{SecondEmail, entity.RoleManager, SecondStoreID},
		{DemoAdmin, entity.RoleAdmin, ""},
	}
	for _, u := range users {
		if _, err := dir.AddUser(u.email, DemoPassword, u.role, u.store); err != nil {
			return err
		}
	}
	return nil
}
