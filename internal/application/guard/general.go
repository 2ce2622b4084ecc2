package guard

import (
	"context"

	"github.com/jhoicas/Inventario-pos/internal/application/session"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// sessionSource lo que el guard general necesita de la máquina de sesión.
type sessionSource interface {
	Snapshot() entity.Session
	CheckSession(ctx context.Context) (entity.Session, error)
}

// GeneralGuard protege las rutas de la aplicación que no son públicas ni administrativas.
// No hace llamadas propias: delega en la máquina de sesión compartida.
type GeneralGuard struct {
	sessions sessionSource
	routes   session.Routes
}

// NewGeneralGuard construye el guard general.
func NewGeneralGuard(sessions sessionSource, routes session.Routes) *GeneralGuard {
	return &GeneralGuard{sessions: sessions, routes: routes}
}

// Evaluate decide qué hacer con path.
//   - Rutas públicas y administrativas: render (el área admin la gobierna AdminGuard).
//   - Sesión unknown: dispara CheckSession y usa su resultado.
//   - authenticated: render con el layout del dispositivo.
//   - unauthenticated: redirect a login.
//   - authenticating: loading.
func (g *GeneralGuard) Evaluate(ctx context.Context, path, userAgent string) Decision {
	layout := LayoutFor(userAgent)
	if g.routes.IsPublic(path) || g.routes.IsAdmin(path) {
		return Decision{Kind: KindRender, Layout: layout}
	}

	snap := g.sessions.Snapshot()
	if snap.Status == entity.StatusUnknown {
		// Los fallos ya quedan reflejados como unauthenticated en la sesión.
		snap, _ = g.sessions.CheckSession(ctx)
	}

	switch snap.Status {
	case entity.StatusAuthenticated:
		return render(snap.User, snap.Store, layout)
	case entity.StatusUnauthenticated:
		return redirect(g.routes.Login)
	default:
		return Decision{Kind: KindLoading, Layout: layout}
	}
}
