package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/guard"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Locals keys que dejan los guards en Fiber.
const (
	LocalPrincipal = "principal"
	LocalStore     = "store"
	LocalLayout    = "layout"
	LocalAdmin     = "admin"
)

// RequireSession aplica el guard general: deja pasar con principal, tienda y layout en
// c.Locals, o responde loading / redirect sin llegar al handler.
func RequireSession(g *guard.GeneralGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := g.Evaluate(c.UserContext(), c.Path(), c.Get(fiber.HeaderUserAgent))
		if d.Kind != guard.KindRender {
			return respondDecision(c, d)
		}
		c.Locals(LocalPrincipal, d.Principal)
		c.Locals(LocalStore, d.Store)
		c.Locals(LocalLayout, d.Layout)
		return c.Next()
	}
}

// RequireAdmin aplica el guard administrativo. La entrada admin pasa sin verificar.
func RequireAdmin(g *guard.AdminGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// El guard guarda la ruta entre peticiones: copiarla fuera del buffer de fiber.
		d := g.Evaluate(c.UserContext(), utils.CopyString(c.Path()))
		if d.Kind != guard.KindRender {
			return respondDecision(c, d)
		}
		c.Locals(LocalAdmin, d.Principal)
		return c.Next()
	}
}

// respondDecision traduce una decisión que no es render a una respuesta HTTP.
func respondDecision(c *fiber.Ctx, d guard.Decision) error {
	switch d.Kind {
	case guard.KindRedirect:
		return c.Redirect(d.RedirectTo, fiber.StatusSeeOther)
	case guard.KindLoading:
		return c.Status(fiber.StatusAccepted).JSON(dto.StatusResponse{Status: "loading"})
	case guard.KindStale:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STALE", Message: "la ruta cambió durante la verificación"})
	default:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BLOCKED", Message: "redirección pendiente"})
	}
}

// GetPrincipal devuelve el principal del contexto (después de RequireSession).
func GetPrincipal(c *fiber.Ctx) *entity.Principal {
	p, _ := c.Locals(LocalPrincipal).(*entity.Principal)
	return p
}

// GetStore devuelve la tienda del contexto (después de RequireSession).
func GetStore(c *fiber.Ctx) *entity.StoreSummary {
	s, _ := c.Locals(LocalStore).(*entity.StoreSummary)
	return s
}

// GetLayout devuelve el layout del contexto (después de RequireSession).
func GetLayout(c *fiber.Ctx) guard.Layout {
	l, _ := c.Locals(LocalLayout).(guard.Layout)
	return l
}

// GetAdmin devuelve el administrador del contexto (después de RequireAdmin).
func GetAdmin(c *fiber.Ctx) *entity.Principal {
	p, _ := c.Locals(LocalAdmin).(*entity.Principal)
	return p
}
