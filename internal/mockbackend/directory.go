package mockbackend

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// User usuario del backend de desarrollo.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Role         string
	StoreID      string // vacío para administradores de plataforma
	Status       string // active, suspended
}

// Principal proyección pública del usuario.
func (u *User) Principal() *entity.Principal {
	return &entity.Principal{ID: u.ID, Email: u.Email, Role: u.Role, StoreID: u.StoreID}
}

// Directory usuarios y tiendas en memoria.
type Directory struct {
	mu     sync.RWMutex
	users  map[string]*User // por email normalizado
	byID   map[string]*User
	stores map[string]entity.StoreSummary
}

// NewDirectory crea un directorio vacío.
func NewDirectory() *Directory {
	return &Directory{
		users:  make(map[string]*User),
		byID:   make(map[string]*User),
		stores: make(map[string]entity.StoreSummary),
	}
}

// normalize pliega mayúsculas del email. Un Caser no se comparte entre goroutines.
func (d *Directory) normalize(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// AddStore registra una tienda.
func (d *Directory) AddStore(s entity.StoreSummary) error {
	if !s.Complete() {
		return domain.ErrInvalidInput
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stores[s.ID] = s
	return nil
}

// AddUser crea un usuario con la contraseña hasheada con bcrypt.
func (d *Directory) AddUser(email, password, role, storeID string) (*User, error) {
	if email == "" || password == "" || role == "" {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	key := d.normalize(email)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[key]; ok {
		return nil, domain.ErrEmailAlreadyExists
	}
	if storeID != "" {
		if _, ok := d.stores[storeID]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		StoreID:      storeID,
		Status:       "active",
	}
	d.users[key] = u
	d.byID[u.ID] = u
	return u, nil
}

// Authenticate verifica email/password.
func (d *Directory) Authenticate(email, password string) (*User, error) {
	d.mu.RLock()
	u, ok := d.users[d.normalize(email)]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if u.Status != "active" {
		return nil, domain.ErrForbidden
	}
	return u, nil
}

// UserByID busca un usuario por id.
func (d *Directory) UserByID(id string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Store busca una tienda por id.
func (d *Directory) Store(id string) (entity.StoreSummary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.stores[id]
	if !ok {
		return entity.StoreSummary{}, domain.ErrNotFound
	}
	return s, nil
}

// Suspend marca un usuario como suspendido.
func (d *Directory) Suspend(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = "suspended"
	return nil
}
