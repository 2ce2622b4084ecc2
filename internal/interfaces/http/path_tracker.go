package http

import (
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// PathTracker recuerda la última página navegada en el shell. El refresco periódico la usa para
// decidir si hace falta redirigir al login. Solo se monta en rutas de página; los endpoints que
// la UI consulta en segundo plano (/session, /realtime/status) no cuentan como navegación.
type PathTracker struct {
	last atomic.Value
}

// Middleware registra la ruta de cada petición GET. Fiber reutiliza el buffer de la
// petición, por eso se copia. Con receptor nil no registra nada.
func (t *PathTracker) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if t == nil {
			return c.Next()
		}
		if c.Method() == fiber.MethodGet {
			t.last.Store(utils.CopyString(c.Path()))
		}
		return c.Next()
	}
}

// Current última ruta navegada ("/" si aún no hubo ninguna).
func (t *PathTracker) Current() string {
	if p, ok := t.last.Load().(string); ok {
		return p
	}
	return "/"
}
