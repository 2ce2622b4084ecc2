package dto

import (
	"encoding/json"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Envelope sobre estándar del backend: {success, data, error}.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// EnvelopeError el backend a veces manda error como string y a veces como objeto.
type EnvelopeError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// UnmarshalJSON acepta "error": "texto" o "error": {"code": .., "message": ..}.
func (e *EnvelopeError) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		e.Message = s
		return nil
	}
	type plain EnvelopeError
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = EnvelopeError(p)
	return nil
}

// LoginRequest credenciales para /auth/login y /auth/admin-login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginData payload de un login exitoso. Store puede venir vacío.
type LoginData struct {
	User  *entity.Principal    `json:"user"`
	Store *entity.StoreSummary `json:"store,omitempty"`
}

// SessionResponse proyección de la sesión para el shell local.
type SessionResponse struct {
	Status    entity.Status        `json:"status"`
	User      *entity.Principal    `json:"user"`
	Store     *entity.StoreSummary `json:"store"`
	LastError string               `json:"lastError,omitempty"`
}

// FromSession construye la proyección de solo lectura.
func FromSession(s entity.Session) SessionResponse {
	return SessionResponse{
		Status:    s.Status,
		User:      s.User,
		Store:     s.Store,
		LastError: s.LastError,
	}
}

// RealtimeStatusResponse estado del canal realtime.
type RealtimeStatusResponse struct {
	Connected bool   `json:"connected"`
	StoreID   string `json:"storeId,omitempty"`
}
