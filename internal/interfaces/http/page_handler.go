package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/guard"
	"github.com/jhoicas/Inventario-pos/internal/application/session"
)

// realtimeStatus lo que el shell necesita del canal realtime.
type realtimeStatus interface {
	Status() dto.RealtimeStatusResponse
}

// PageHandler entrega las páginas del shell como JSON. El contenido de cada página lo pide
// la capa de presentación al backend; aquí solo se arma el marco con la sesión.
type PageHandler struct {
	machine  *session.Machine
	admin    *guard.AdminGuard
	realtime realtimeStatus
}

// NewPageHandler construye el handler de páginas.
func NewPageHandler(machine *session.Machine, admin *guard.AdminGuard, rt realtimeStatus) *PageHandler {
	return &PageHandler{machine: machine, admin: admin, realtime: rt}
}

// LoginPage página pública de login. Con sesión activa redirige al dashboard.
func (h *PageHandler) LoginPage(c *fiber.Ctx) error {
	s := h.machine.Snapshot()
	if s.Authenticated() {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"page":      "login",
		"layout":    guard.LayoutFor(c.Get(fiber.HeaderUserAgent)),
		"loading":   s.Loading(),
		"lastError": s.LastError,
	})
}

// AdminEntry página de entrada del área administrativa (formulario de login admin).
func (h *PageHandler) AdminEntry(c *fiber.Ctx) error {
	snap := h.admin.Snapshot()
	return c.JSON(fiber.Map{
		"page":     "admin-login",
		"admin":    snap.Admin,
		"verified": snap.Verified,
	})
}

// App devuelve un handler para una página de la aplicación protegida por RequireSession.
func (h *PageHandler) App(page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"page":   page,
			"layout": GetLayout(c),
			"user":   GetPrincipal(c),
			"role":   GetRole(c),
			"store":  GetStore(c),
		})
	}
}

// Admin devuelve un handler para una página del área admin protegida por RequireAdmin.
func (h *PageHandler) Admin(page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"page":  page,
			"admin": GetAdmin(c),
		})
	}
}

// RealtimeStatus estado del canal realtime.
// GET /realtime/status
func (h *PageHandler) RealtimeStatus(c *fiber.Ctx) error {
	if h.realtime == nil {
		return c.JSON(dto.RealtimeStatusResponse{})
	}
	return c.JSON(h.realtime.Status())
}
