package mockbackend

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/pkg/jwt"
)

// Nombres de las cookies HTTP-only.
const (
	CookieSession = "pos_session"
	CookieAdmin   = "pos_admin"
)

// handler implementa el contrato de autenticación del backend.
type handler struct {
	dir    *Directory
	tokens *Tokens
	ttl    time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(envelope{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(envelope{Success: false, Error: msg})
}

func (h *handler) setCookie(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.ttl),
	})
}

func (h *handler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}

// login POST /auth/login
func (h *handler) login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "cuerpo inválido")
	}
	if in.Email == "" || in.Password == "" {
		return fail(c, fiber.StatusBadRequest, "email y password son requeridos")
	}
	u, err := h.dir.Authenticate(in.Email, in.Password)
	if err != nil {
		return authFailure(c, err)
	}
	if u.StoreID == "" {
		return fail(c, fiber.StatusForbidden, "el usuario no pertenece a ninguna tienda")
	}
	store, err := h.dir.Store(u.StoreID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "tienda no encontrada")
	}
	token, err := h.tokens.Issue(u, jwt.ScopeStore)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	h.setCookie(c, CookieSession, token)
	return ok(c, dto.LoginData{User: u.Principal(), Store: &store})
}

// me GET /auth/me
func (h *handler) me(c *fiber.Ctx) error {
	u, _, err := h.current(c, CookieSession, jwt.ScopeStore)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "sesión inválida")
	}
	return ok(c, u.Principal())
}

// store GET /store
func (h *handler) store(c *fiber.Ctx) error {
	u, _, err := h.current(c, CookieSession, jwt.ScopeStore)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "sesión inválida")
	}
	s, err := h.dir.Store(u.StoreID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "tienda no encontrada")
	}
	return ok(c, s)
}

// refresh POST /auth/refresh: rota la credencial de tienda.
func (h *handler) refresh(c *fiber.Ctx) error {
	u, claims, err := h.current(c, CookieSession, jwt.ScopeStore)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "sesión inválida")
	}
	token, err := h.tokens.Issue(u, jwt.ScopeStore)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	h.tokens.Revoke(claims.ID)
	h.setCookie(c, CookieSession, token)
	return ok(c, nil)
}

// logout POST /auth/logout
func (h *handler) logout(c *fiber.Ctx) error {
	if _, claims, err := h.current(c, CookieSession, jwt.ScopeStore); err == nil {
		h.tokens.Revoke(claims.ID)
	}
	h.clearCookie(c, CookieSession)
	return ok(c, nil)
}

// adminLogin POST /auth/admin-login
func (h *handler) adminLogin(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "cuerpo inválido")
	}
	u, err := h.dir.Authenticate(in.Email, in.Password)
	if err != nil {
		return authFailure(c, err)
	}
	if u.Role != entity.RoleAdmin {
		return fail(c, fiber.StatusForbidden, "se requiere rol admin")
	}
	token, err := h.tokens.Issue(u, jwt.ScopeAdmin)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	h.setCookie(c, CookieAdmin, token)
	return ok(c, dto.LoginData{User: u.Principal()})
}

// adminVerify GET /auth/admin-login/verify
func (h *handler) adminVerify(c *fiber.Ctx) error {
	u, _, err := h.current(c, CookieAdmin, jwt.ScopeAdmin)
	if err != nil || u.Role != entity.RoleAdmin {
		return fail(c, fiber.StatusUnauthorized, "sesión admin inválida")
	}
	return ok(c, u.Principal())
}

// adminLogout POST /auth/admin-login/logout
func (h *handler) adminLogout(c *fiber.Ctx) error {
	if _, claims, err := h.current(c, CookieAdmin, jwt.ScopeAdmin); err == nil {
		h.tokens.Revoke(claims.ID)
	}
	h.clearCookie(c, CookieAdmin)
	return ok(c, nil)
}

// current resuelve el usuario de la cookie name en scope.
func (h *handler) current(c *fiber.Ctx, name, scope string) (*User, *jwt.Claims, error) {
	claims, err := h.tokens.Verify(c.Cookies(name), scope)
	if err != nil {
		return nil, nil, err
	}
	u, err := h.dir.UserByID(claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u.Status != "active" {
		return nil, nil, domain.ErrForbidden
	}
	return u, claims, nil
}

func authFailure(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrForbidden) {
		return fail(c, fiber.StatusForbidden, "cuenta inactiva o suspendida")
	}
	return fail(c, fiber.StatusUnauthorized, "email o contraseña inválidos")
}
