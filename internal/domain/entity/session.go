package entity

// Status estado de autenticación del terminal.
type Status string

const (
	StatusUnknown         Status = "unknown"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Session registro local de la sesión. Hay una sola por proceso y la maneja
// exclusivamente la máquina de estados; los lectores reciben copias.
// Nunca guarda el valor de la credencial (viaja en una cookie HTTP-only).
type Session struct {
	User      *Principal    `json:"user"`
	Store     *StoreSummary `json:"store"`
	Status    Status        `json:"status"`
	LastError string        `json:"lastError,omitempty"`
}

// Authenticated atajo para Status == StatusAuthenticated.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Loading informa si la sesión todavía no se ha resuelto.
func (s Session) Loading() bool {
	return s.Status == StatusUnknown || s.Status == StatusAuthenticating
}

// Valid comprueba el invariante: autenticada si y solo si hay usuario y tienda,
// y nunca uno sin el otro.
func (s Session) Valid() bool {
	hasUser, hasStore := s.User != nil, s.Store != nil
	if hasUser != hasStore {
		return false
	}
	return (s.Status == StatusAuthenticated) == (hasUser && hasStore)
}

// Clone copia profunda para entregar a lectores.
func (s Session) Clone() Session {
	return Session{
		User:      s.User.Clone(),
		Store:     s.Store.Clone(),
		Status:    s.Status,
		LastError: s.LastError,
	}
}

// AdminSession estado del alcance administrativo, independiente de Session.
// El administrador es de plataforma: no requiere tienda.
type AdminSession struct {
	Admin    *Principal `json:"admin"`
	Verified bool       `json:"verified"`
}
