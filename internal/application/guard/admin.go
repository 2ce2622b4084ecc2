package guard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/session"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// adminAPI subconjunto de ports.AuthAPI que usa el área administrativa.
type adminAPI interface {
	AdminLogin(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error)
	AdminVerify(ctx context.Context) (*entity.Principal, error)
	AdminLogout(ctx context.Context) error
}

// AdminGuard protege el área administrativa con su propia credencial, independiente de la
// sesión de tienda. Una verificación exitosa vale para toda la sesión de navegación: los
// cambios de ruta posteriores no vuelven a llamar al backend.
type AdminGuard struct {
	api    adminAPI
	routes session.Routes
	log    *logger.Logger

	mu         sync.Mutex
	admin      *entity.Principal
	verified   bool
	path       string
	generation uint64
	pending    bool
	pendingGen uint64
	redirected bool
}

// NewAdminGuard construye el guard administrativo.
func NewAdminGuard(api adminAPI, routes session.Routes, log *logger.Logger) *AdminGuard {
	return &AdminGuard{api: api, routes: routes, log: log.Component("admin_guard")}
}

// Navigate registra un cambio de ruta. Las verificaciones iniciadas con la ruta anterior
// quedan obsoletas y su resultado se descarta.
func (g *AdminGuard) Navigate(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.navigateLocked(path)
}

func (g *AdminGuard) navigateLocked(path string) {
	if path == g.path {
		return
	}
	g.path = path
	g.generation++
	if g.routes.IsAdminEntry(path) {
		g.redirected = false
	}
}

// Evaluate decide qué hacer con path dentro del área administrativa.
func (g *AdminGuard) Evaluate(ctx context.Context, path string) Decision {
	g.mu.Lock()
	g.navigateLocked(path)
	gen := g.generation

	// En la propia entrada no se verifica: evita el bucle de redirecciones.
	if g.routes.IsAdminEntry(path) {
		admin := g.admin
		g.mu.Unlock()
		return Decision{Kind: KindRender, Principal: admin.Clone()}
	}
	if g.verified {
		admin := g.admin
		g.mu.Unlock()
		return render(admin, nil, "")
	}
	if g.redirected {
		g.mu.Unlock()
		return Decision{Kind: KindBlocked}
	}
	if g.pending && g.pendingGen == gen {
		g.mu.Unlock()
		return Decision{Kind: KindLoading}
	}
	g.pending, g.pendingGen = true, gen
	g.mu.Unlock()

	p, err := g.api.AdminVerify(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingGen == gen {
		g.pending = false
	}
	if gen != g.generation {
		g.log.Debug().Str("path", path).Msg("verificación obsoleta descartada")
		return Decision{Kind: KindStale}
	}
	if err != nil {
		g.log.Info().Err(err).Str("path", path).Msg("verificación admin fallida")
		g.admin, g.verified = nil, false
		g.redirected = true
		return redirect(g.routes.AdminEntry)
	}
	g.admin, g.verified = p, true
	return render(p, nil, "")
}

// AdminLogin autentica contra /auth/admin-login y marca la navegación como verificada.
func (g *AdminGuard) AdminLogin(ctx context.Context, email, password string) (*entity.Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("admin login: %w", domain.ErrInvalidInput)
	}
	data, err := g.api.AdminLogin(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.admin, g.verified = data.User, true
	g.redirected = false
	g.log.Info().Str("admin_id", data.User.ID).Msg("sesión admin iniciada")
	return data.User.Clone(), nil
}

// Logout limpia la marca local y pide invalidar la credencial admin. Siempre redirige a la
// entrada administrativa, aunque el backend falle.
func (g *AdminGuard) Logout(ctx context.Context) session.Intent {
	g.mu.Lock()
	g.generation++
	g.admin, g.verified = nil, false
	g.mu.Unlock()

	if err := g.api.AdminLogout(ctx); err != nil {
		g.log.Warn().Err(err).Msg("logout admin en backend falló")
	}
	return session.RedirectTo(g.routes.AdminEntry)
}

// Snapshot copia del estado administrativo.
func (g *AdminGuard) Snapshot() entity.AdminSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	return entity.AdminSession{Admin: g.admin.Clone(), Verified: g.verified}
}
