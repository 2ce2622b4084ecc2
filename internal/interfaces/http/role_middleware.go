package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/dto"
)

// RequireRole restringe una página a ciertos roles. Debe usarse DESPUÉS de RequireSession
// (necesita el principal en c.Locals).
//
//   - 401 MISSING_ROLE → no hay principal o no trae rol.
//   - 403 FORBIDDEN    → el rol no está entre los permitidos.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil || p.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "la sesión no trae rol"})
		}
		if _, ok := allowed[p.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol '" + p.Role + "' no tiene acceso a esta página"})
		}
		return c.Next()
	}
}

// GetRole devuelve el rol del principal del contexto.
func GetRole(c *fiber.Ctx) string {
	if p := GetPrincipal(c); p != nil {
		return p.Role
	}
	return ""
}
