package ports

import (
	"context"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// AuthAPI puerto de salida hacia el backend de autenticación.
// Todas las llamadas viajan con credenciales (cookie HTTP-only); la implementación
// nunca lee ni escribe el valor de la cookie.
//
// Errores esperados: domain.ErrTransport (red/timeout), domain.ErrUnauthorized (401/403),
// domain.ErrMalformedPayload (cuerpo ilegible o incompleto) y *domain.APIError (success:false).
type AuthAPI interface {
	// Me valida la credencial de tienda actual (GET /auth/me).
	Me(ctx context.Context) (*entity.Principal, error)
	// Store consulta la tienda del principal (GET /store).
	Store(ctx context.Context) (*entity.StoreSummary, error)
	// Login POST /auth/login.
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error)
	// Refresh POST /auth/refresh; solo importa el status.
	Refresh(ctx context.Context) error
	// Logout POST /auth/logout.
	Logout(ctx context.Context) error

	// AdminLogin POST /auth/admin-login.
	AdminLogin(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error)
	// AdminVerify GET /auth/admin-login/verify.
	AdminVerify(ctx context.Context) (*entity.Principal, error)
	// AdminLogout POST /auth/admin-login/logout.
	AdminLogout(ctx context.Context) error
}
