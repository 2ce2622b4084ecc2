package mockbackend

import (
	"fmt"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/pkg/jwt"
)

// TokenConfig configuración para emitir credenciales.
type TokenConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Tokens emite, valida y revoca las credenciales que viajan en las cookies.
type Tokens struct {
	cfg TokenConfig

	mu      sync.Mutex
	revoked map[string]struct{}
	issued  int
}

// NewTokens construye el emisor.
func NewTokens(cfg TokenConfig) *Tokens {
	return &Tokens{cfg: cfg, revoked: make(map[string]struct{})}
}

// Issue emite una credencial para u en el alcance indicado.
func (t *Tokens) Issue(u *User, scope string) (string, error) {
	token, _, err := jwt.Generate(t.cfg.Secret, jwt.Subject{
		UserID:  u.ID,
		StoreID: u.StoreID,
		Role:    u.Role,
		Scope:   scope,
	}, t.cfg.Issuer, t.cfg.ExpMinutes)
	if err != nil {
		return "", fmt.Errorf("emitir credencial: %w", err)
	}
	t.mu.Lock()
	t.issued++
	t.mu.Unlock()
	return token, nil
}

// Verify valida token en scope y comprueba que no esté revocado.
func (t *Tokens) Verify(token, scope string) (*jwt.Claims, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := jwt.Parse(t.cfg.Secret, token, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: credencial revocada", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Revoke invalida la credencial con id.
func (t *Tokens) Revoke(id string) {
	if id == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[id] = struct{}{}
}

// Issued cantidad de credenciales emitidas (login + rotaciones).
func (t *Tokens) Issued() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued
}
