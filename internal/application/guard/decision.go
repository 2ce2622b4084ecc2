package guard

import (
	"strings"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Kind resultado de evaluar un guard.
type Kind string

const (
	// KindRender renderizar el subárbol.
	KindRender Kind = "render"
	// KindLoading la sesión aún se está resolviendo.
	KindLoading Kind = "loading"
	// KindRedirect navegar a RedirectTo.
	KindRedirect Kind = "redirect"
	// KindBlocked ya se pidió una redirección; no repetirla ni renderizar.
	KindBlocked Kind = "blocked"
	// KindStale la ruta cambió mientras se verificaba; el resultado no aplica.
	KindStale Kind = "stale"
)

// Layout variante del shell según el dispositivo.
type Layout string

const (
	LayoutDesktop Layout = "desktop"
	LayoutCompact Layout = "compact"
)

// Decision salida pura de un guard: qué mostrar y, si aplica, a dónde navegar.
type Decision struct {
	Kind       Kind                 `json:"kind"`
	RedirectTo string               `json:"redirectTo,omitempty"`
	Principal  *entity.Principal    `json:"principal,omitempty"`
	Store      *entity.StoreSummary `json:"store,omitempty"`
	Layout     Layout               `json:"layout,omitempty"`
}

func render(p *entity.Principal, s *entity.StoreSummary, l Layout) Decision {
	return Decision{Kind: KindRender, Principal: p.Clone(), Store: s.Clone(), Layout: l}
}

func redirect(to string) Decision { return Decision{Kind: KindRedirect, RedirectTo: to} }

var compactMarkers = []string{"mobi", "android", "iphone", "ipod", "windows phone", "opera mini"}

// LayoutFor elige el shell a partir del User-Agent. Las tablets y los terminales POS
// con navegador de escritorio reciben el shell completo.
func LayoutFor(userAgent string) Layout {
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet") {
		return LayoutDesktop
	}
	for _, m := range compactMarkers {
		if strings.Contains(ua, m) {
			return LayoutCompact
		}
	}
	return LayoutDesktop
}
