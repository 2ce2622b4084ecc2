// Package portstest ofrece dobles de los puertos de aplicación para tests.
package portstest

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ports"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

var _ ports.AuthAPI = (*FakeAuth)(nil)

// Owner principal de demo ligado a DemoStore.
func Owner() *entity.Principal {
	return &entity.Principal{ID: "u1", Email: "owner@store.pk", Role: entity.RoleOwner, StoreID: "s1"}
}

// Admin principal administrador de plataforma.
func Admin() *entity.Principal {
	return &entity.Principal{ID: "a1", Email: "admin@store.pk", Role: entity.RoleAdmin}
}

// DemoStore tienda de demo.
func DemoStore() *entity.StoreSummary {
	return &entity.StoreSummary{ID: "s1", Name: "Demo Store", Currency: "PKR"}
}

// FakeAuth implementación configurable de ports.AuthAPI. Cada campo nil usa un
// comportamiento por defecto: Me/AdminVerify/Login/AdminLogin fallan con ErrUnauthorized,
// Store devuelve DemoStore y Refresh/Logout/AdminLogout responden OK.
type FakeAuth struct {
	MeFunc          func(ctx context.Context) (*entity.Principal, error)
	StoreFunc       func(ctx context.Context) (*entity.StoreSummary, error)
	LoginFunc       func(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error)
	AdminLoginFunc  func(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error)
	AdminVerifyFunc func(ctx context.Context) (*entity.Principal, error)
	RefreshFunc     func(ctx context.Context) error
	LogoutFunc      func(ctx context.Context) error
	AdminLogoutFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls map[string]int
}

// Calls cuántas veces se llamó al método name ("Me", "Store", ...).
func (f *FakeAuth) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeAuth) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *FakeAuth) Me(ctx context.Context) (*entity.Principal, error) {
	f.record("Me")
	if f.MeFunc != nil {
		return f.MeFunc(ctx)
	}
	return nil, domain.ErrUnauthorized
}

func (f *FakeAuth) Store(ctx context.Context) (*entity.StoreSummary, error) {
	f.record("Store")
	if f.StoreFunc != nil {
		return f.StoreFunc(ctx)
	}
	return DemoStore(), nil
}

func (f *FakeAuth) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error) {
	f.record("Login")
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, in)
	}
	return nil, domain.ErrUnauthorized
}

func (f *FakeAuth) AdminLogin(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error) {
	f.record("AdminLogin")
	if f.AdminLoginFunc != nil {
		return f.AdminLoginFunc(ctx, in)
	}
	return nil, domain.ErrUnauthorized
}

func (f *FakeAuth) AdminVerify(ctx context.Context) (*entity.Principal, error) {
	f.record("AdminVerify")
	if f.AdminVerifyFunc != nil {
		return f.AdminVerifyFunc(ctx)
	}
	return nil, domain.ErrUnauthorized
}

func (f *FakeAuth) Refresh(ctx context.Context) error {
	f.record("Refresh")
	if f.RefreshFunc != nil {
		return f.RefreshFunc(ctx)
	}
	return nil
}

func (f *FakeAuth) Logout(ctx context.Context) error {
	f.record("Logout")
	if f.LogoutFunc != nil {
		return f.LogoutFunc(ctx)
	}
	return nil
}

func (f *FakeAuth) AdminLogout(ctx context.Context) error {
	f.record("AdminLogout")
	if f.AdminLogoutFunc != nil {
		return f.AdminLogoutFunc(ctx)
	}
	return nil
}

// LoggedIn devuelve un FakeAuth donde Me y Login resuelven a Owner y DemoStore.
func LoggedIn() *FakeAuth {
	return &FakeAuth{
		MeFunc: func(context.Context) (*entity.Principal, error) { return Owner(), nil },
		LoginFunc: func(context.Context, dto.LoginRequest) (*dto.LoginData, error) {
			return &dto.LoginData{User: Owner(), Store: DemoStore()}, nil
		},
	}
}
