package mockbackend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/mockbackend"
	"github.com/jhoicas/Inventario-pos/pkg/jwt"
)

func newDirectory(t *testing.T) *mockbackend.Directory {
	t.Helper()
	d := mockbackend.NewDirectory()
	require.NoError(t, d.AddStore(entity.StoreSummary{ID: "s1", Name: "Demo Store"}))
	_, err := d.AddUser("Owner@Store.pk", "secret", entity.RoleOwner, "s1")
	require.NoError(t, err)
	return d
}

func TestDirectory_Authenticate_IgnoraMayusculasYEspacios(t *testing.T) {
	d := newDirectory(t)

	u, err := d.Authenticate("  owner@STORE.pk ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "s1", u.StoreID)
	assert.NotEqual(t, "secret", u.PasswordHash)
}

func TestDirectory_Authenticate_Errores(t *testing.T) {
	d := newDirectory(t)

	_, err := d.Authenticate("nadie@store.pk", "secret")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = d.Authenticate("owner@store.pk", "otra")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDirectory_UsuarioSuspendido_Forbidden(t *testing.T) {
	d := newDirectory(t)
	u, err := d.Authenticate("owner@store.pk", "secret")
	require.NoError(t, err)
	require.NoError(t, d.Suspend(u.ID))

	_, err = d.Authenticate("owner@store.pk", "secret")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDirectory_AddUser_Validaciones(t *testing.T) {
	d := newDirectory(t)

	_, err := d.AddUser("owner@store.pk", "x", entity.RoleCashier, "s1")
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = d.AddUser("nuevo@store.pk", "x", entity.RoleCashier, "s9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = d.AddUser("", "x", entity.RoleCashier, "s1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, d.AddStore(entity.StoreSummary{ID: "s2"}), domain.ErrInvalidInput)
}

func TestTokens_RevokeInvalidaLaCredencial(t *testing.T) {
	d := newDirectory(t)
	u, err := d.Authenticate("owner@store.pk", "secret")
	require.NoError(t, err)
	tokens := mockbackend.NewTokens(mockbackend.TokenConfig{Secret: "s3cr3t", ExpMinutes: 5, Issuer: "test"})

	tok, err := tokens.Issue(u, jwt.ScopeStore)
	require.NoError(t, err)
	claims, err := tokens.Verify(tok, jwt.ScopeStore)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = tokens.Verify(tok, jwt.ScopeAdmin)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	tokens.Revoke(claims.ID)
	_, err = tokens.Verify(tok, jwt.ScopeStore)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, tokens.Issued())
}
