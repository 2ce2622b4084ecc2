package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/application/guard"
	"github.com/jhoicas/Inventario-pos/internal/application/session"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Páginas de la aplicación (sesión de tienda) y del área admin.
var (
	appPages   = []string{"dashboard", "inventory", "pos", "orders", "customers", "reports"}
	adminPages = []string{"dashboard", "stores", "users", "audit-logs"}

	// Páginas restringidas por rol; el resto las ve cualquier rol de tienda.
	pageRoles = map[string][]string{
		"reports":   {entity.RoleOwner, entity.RoleManager},
		"inventory": {entity.RoleOwner, entity.RoleManager},
	}
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Machine      *session.Machine
	GeneralGuard *guard.GeneralGuard
	AdminGuard   *guard.AdminGuard
	Realtime     realtimeStatus
	Routes       session.Routes
	Tracker      *PathTracker // opcional; registra la navegación por páginas
}

// Router registra las rutas del shell.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.Machine, deps.AdminGuard)
	pageHandler := NewPageHandler(deps.Machine, deps.AdminGuard, deps.Realtime)
	track := deps.Tracker.Middleware()

	// Público
	app.Get(deps.Routes.Login, track, pageHandler.LoginPage)
	app.Post(deps.Routes.Login, authHandler.Login)
	app.Get("/session", authHandler.Session)
	app.Post("/session/refresh", authHandler.Refresh)
	app.Post("/logout", authHandler.Logout)

	// Área admin: la entrada no pasa por el guard.
	admin := app.Group(deps.Routes.AdminEntry)
	admin.Get("/", track, pageHandler.AdminEntry)
	admin.Post("/login", authHandler.AdminLogin)
	admin.Post("/logout", authHandler.AdminLogout)
	protectedAdmin := admin.Group("/", RequireAdmin(deps.AdminGuard))
	for _, p := range adminPages {
		protectedAdmin.Get("/"+p, track, pageHandler.Admin("admin-"+p))
	}

	// Aplicación (sesión de tienda)
	protected := app.Group("/", RequireSession(deps.GeneralGuard))
	for _, p := range appPages {
		if roles, ok := pageRoles[p]; ok {
			protected.Get("/"+p, track, RequireRole(roles...), pageHandler.App(p))
			continue
		}
		protected.Get("/"+p, track, pageHandler.App(p))
	}
	protected.Get("/realtime/status", pageHandler.RealtimeStatus)
}
