package session

import (
	"path"
	"strings"
)

// Intent salida de navegación. El estado de sesión nunca navega por sí mismo:
// devuelve la intención y el llamador (guard, shell) decide cómo aplicarla.
type Intent struct {
	RedirectTo string `json:"redirectTo,omitempty"`
}

// Redirect informa si la intención pide navegar.
func (i Intent) Redirect() bool { return i.RedirectTo != "" }

// RedirectTo construye una intención de navegación.
func RedirectTo(p string) Intent { return Intent{RedirectTo: p} }

// Routes rutas de entrada y rutas públicas del shell.
type Routes struct {
	Login      string
	AdminEntry string
	Public     []string
}

// DefaultRoutes rutas por defecto del terminal.
func DefaultRoutes() Routes {
	return Routes{Login: "/login", AdminEntry: "/admin", Public: []string{"/login", "/health"}}
}

// IsPublic informa si p no requiere sesión. La ruta de login siempre es pública.
func (r Routes) IsPublic(p string) bool {
	p = normalize(p)
	if p == normalize(r.Login) {
		return true
	}
	for _, pub := range r.Public {
		if matches(p, normalize(pub)) {
			return true
		}
	}
	return false
}

// IsAdmin informa si p pertenece al área administrativa (incluida la entrada).
func (r Routes) IsAdmin(p string) bool {
	return matches(normalize(p), normalize(r.AdminEntry))
}

// IsAdminEntry informa si p es exactamente la entrada del área administrativa.
func (r Routes) IsAdminEntry(p string) bool {
	return normalize(p) == normalize(r.AdminEntry)
}

func matches(p, prefix string) bool {
	if prefix == "/" {
		return p == "/"
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
