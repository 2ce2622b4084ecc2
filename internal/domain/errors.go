package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Sesión del terminal.
	ErrTransport        = errors.New("backend no disponible")
	ErrMalformedPayload = errors.New("respuesta del backend malformada")
	ErrStoreLookup      = errors.New("no se pudo resolver la tienda de la sesión")
	ErrLoginInFlight    = errors.New("ya hay un inicio de sesión en curso")
	ErrSuperseded       = errors.New("otra operación de sesión reemplazó a esta")

	// Canal realtime.
	ErrUnknownEvent = errors.New("evento realtime desconocido")
)

// APIError es un fallo de dominio devuelto por el backend ({success:false, error}).
// Message se muestra tal cual al usuario.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error // causa clasificada (p. ej. ErrUnauthorized en 401/403), puede ser nil
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend (%d): %s", e.Status, e.Message)
}

// UserMessage devuelve el mensaje a mostrar en el formulario para err.
// Los APIError se muestran literalmente; el resto se resume.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrTransport):
		return "no se pudo contactar al servidor"
	case errors.Is(err, ErrUnauthorized):
		return "credenciales inválidas"
	case errors.Is(err, ErrStoreLookup):
		return "no se pudo cargar la tienda"
	case errors.Is(err, ErrLoginInFlight):
		return "inicio de sesión en curso"
	case errors.Is(err, ErrSuperseded):
		return "la sesión cambió mientras se iniciaba sesión; intenta de nuevo"
	case errors.Is(err, ErrInvalidInput):
		return "email y password son requeridos"
	}
	return err.Error()
}
