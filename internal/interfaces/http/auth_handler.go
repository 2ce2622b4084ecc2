package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/guard"
	"github.com/jhoicas/Inventario-pos/internal/application/session"
	"github.com/jhoicas/Inventario-pos/internal/domain"
)

// headerCurrentPath ruta en la que está el usuario al pedir un refresh.
const headerCurrentPath = "X-Current-Path"

// AuthHandler maneja login, logout y refresh de la sesión de tienda y de la admin.
type AuthHandler struct {
	machine *session.Machine
	admin   *guard.AdminGuard
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(machine *session.Machine, admin *guard.AdminGuard) *AuthHandler {
	return &AuthHandler{machine: machine, admin: admin}
}

// Session devuelve la proyección de la sesión actual.
// GET /session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(dto.FromSession(h.machine.Snapshot()))
}

// Login inicia sesión de tienda.
// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.machine.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return loginError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Logout cierra la sesión de tienda y redirige a login pase lo que pase.
// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	intent := h.machine.Logout(c.UserContext())
	return c.Redirect(intent.RedirectTo, fiber.StatusSeeOther)
}

// Refresh renueva la credencial en silencio.
// POST /session/refresh
//
// La ruta actual llega en X-Current-Path (o ?path=); si el refresh falla y la ruta no es
// pública la respuesta trae redirectTo.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	current := c.Get(headerCurrentPath)
	if current == "" {
		current = c.Query("path", "/")
	}
	intent, err := h.machine.Refresh(c.UserContext(), current)
	status := fiber.StatusOK
	if err != nil {
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{
		"redirectTo": intent.RedirectTo,
		"session":    dto.FromSession(h.machine.Snapshot()),
	})
}

// AdminLogin inicia sesión administrativa.
// POST /admin/login
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	admin, err := h.admin.AdminLogin(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return loginError(c, err)
	}
	return c.JSON(fiber.Map{"admin": admin, "verified": true})
}

// AdminLogout cierra la sesión administrativa y redirige a la entrada admin.
// POST /admin/logout
func (h *AuthHandler) AdminLogout(c *fiber.Ctx) error {
	intent := h.admin.Logout(c.UserContext())
	return c.Redirect(intent.RedirectTo, fiber.StatusSeeOther)
}

// loginError mapea fallos de login a respuestas; los mensajes del backend van tal cual.
func loginError(c *fiber.Ctx, err error) error {
	msg := domain.UserMessage(err)
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	case errors.Is(err, domain.ErrLoginInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOGIN_IN_FLIGHT", Message: msg})
	case errors.Is(err, domain.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SUPERSEDED", Message: msg})
	case errors.Is(err, domain.ErrTransport):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BACKEND_UNAVAILABLE", Message: msg})
	case errors.Is(err, domain.ErrStoreLookup):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "STORE_LOOKUP", Message: msg})
	case errors.Is(err, domain.ErrUnauthorized), errors.As(err, &apiErr):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: msg})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: msg})
}
