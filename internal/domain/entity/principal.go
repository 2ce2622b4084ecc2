package entity

// Roles que puede traer un Principal.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

// Principal identifica al actor autenticado. Es inmutable una vez emitido por login/refresh;
// una nueva autenticación lo reemplaza completo.
type Principal struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	StoreID string `json:"storeId,omitempty"`
}

// Complete informa si el principal trae los campos mínimos para abrir sesión.
func (p *Principal) Complete() bool {
	return p != nil && p.ID != "" && p.Email != ""
}

// Clone devuelve una copia independiente (nil si p es nil).
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
