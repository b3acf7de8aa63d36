package gate

import (
	"github.com/pribylovaa/blastify-gateway/internal/routes"
	"github.com/pribylovaa/blastify-gateway/internal/token"
)

// ViewKind — что оболочка страницы рисует вместо/вместе с содержимым.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewRedirecting
	ViewChildren
)

func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewRedirecting:
		return "redirecting"
	default:
		return "children"
	}
}

// MarshalText — в JSON вид отдаётся строкой.
func (k ViewKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// View — решение Client: плейсхолдер, редирект или содержимое.
type View struct {
	Kind     ViewKind `json:"kind"`
	Location string   `json:"location,omitempty"`
}

// AuthState — состояние аутентификации на стороне браузера.
// Пока Loading, State не учитывается.
type AuthState struct {
	Loading bool
	State   TokenState
}

// Client — решение при рендере в браузере. Дублирует Edge только ради UX:
// не показать защищённое содержимое, пока идёт редирект.
type Client struct {
	routes *routes.Table
}

func NewClient(t *routes.Table) *Client { return &Client{routes: t} }

// Render пересчитывается при каждой смене пути или состояния; результат
// зависит только от аргументов.
func (c *Client) Render(path string, a AuthState) View {
	if a.Loading {
		return View{Kind: ViewLoading}
	}

	out := ClassifyAccess(c.routes, path, a.State)
	if !out.Allowed() {
		return View{
			Kind:     ViewRedirecting,
			Location: SignInURL(c.routes.SignInPath(), path, ""),
		}
	}

	if c.routes.IsAuthPage(path) && a.State.Access == token.Valid {
		return View{Kind: ViewRedirecting, Location: c.routes.DashboardPath()}
	}

	return View{Kind: ViewChildren}
}
