// gate — решение «пускать / редиректить / отказать» для пути и состояния токенов.
//
// ClassifyAccess — единственная функция классификации; её вызывают и Edge
// (на каждом HTTP-запросе в шлюзе), и Client (оболочка страницы в браузере),
// поэтому правила у двух точек не расходятся. Пакет не держит изменяемого
// состояния: результат зависит только от аргументов.
package gate

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pribylovaa/blastify-gateway/internal/routes"
	"github.com/pribylovaa/blastify-gateway/internal/token"
)

// Outcome — итог классификации запроса.
type Outcome int

const (
	Public Outcome = iota
	ProtectedValid
	ProtectedNoToken
	ProtectedExpiredToken
	ProtectedInvalidToken
)

func (o Outcome) String() string {
	switch o {
	case Public:
		return "public"
	case ProtectedValid:
		return "protected_valid"
	case ProtectedNoToken:
		return "protected_no_token"
	case ProtectedExpiredToken:
		return "protected_expired_token"
	case ProtectedInvalidToken:
		return "protected_invalid_token"
	default:
		return "unknown"
	}
}

// Allowed — запрос проходит дальше.
func (o Outcome) Allowed() bool { return o == Public || o == ProtectedValid }

// TokenState — то, что видно из cookie на момент проверки.
type TokenState struct {
	Access     token.Status
	HasRefresh bool
}

// ClassifyAccess — общая для Edge и Client классификация.
// Неизвестный статус токена считается невалидным.
func ClassifyAccess(t *routes.Table, path string, st TokenState) Outcome {
	if t.IsPublic(path) {
		return Public
	}

	switch st.Access {
	case token.Valid:
		return ProtectedValid
	case token.Missing:
		return ProtectedNoToken
	case token.Expired:
		return ProtectedExpiredToken
	default:
		return ProtectedInvalidToken
	}
}

// Action — что сделать с запросом.
type Action int

const (
	Allow Action = iota
	Redirect
	Reject
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "reject"
	}
}

// Сообщения JSON-отказа для API-путей.
const (
	MsgAuthRequired = "Authentication required"
	MsgTokenExpired = "Token expired"
	MsgInvalidToken = "Invalid authentication token"
)

// Decision — итог Edge для одного запроса.
// Location заполнен для Redirect, Status и Message — для Reject.
type Decision struct {
	Outcome  Outcome
	Action   Action
	Location string
	Status   int
	Message  string
}

// Edge — решение на границе сети, до рендера страницы или вызова API.
type Edge struct {
	routes *routes.Table
}

func NewEdge(t *routes.Table) *Edge { return &Edge{routes: t} }

// Decide классифицирует запрос и выбирает действие.
func (e *Edge) Decide(path string, st TokenState) Decision {
	out := ClassifyAccess(e.routes, path, st)
	if out.Allowed() {
		return Decision{Outcome: out, Action: Allow}
	}

	return e.deny(out, path, st)
}

// Deny строит отказ для заданного исхода; используется и при восстановлении после паники.
func (e *Edge) Deny(out Outcome, path string, st TokenState) Decision {
	if out.Allowed() {
		out = ProtectedInvalidToken
	}

	return e.deny(out, path, st)
}

func (e *Edge) deny(out Outcome, path string, st TokenState) Decision {
	var (
		msg    string
		reason string
	)

	switch out {
	case ProtectedNoToken:
		msg = MsgAuthRequired
		if st.HasRefresh {
			reason = "refresh"
		}
	case ProtectedExpiredToken:
		msg = MsgTokenExpired
		reason = "expired"
	default:
		msg = MsgInvalidToken
		reason = "invalid"
	}

	if e.routes.IsAPI(path) {
		return Decision{
			Outcome: out,
			Action:  Reject,
			Status:  http.StatusUnauthorized,
			Message: msg,
		}
	}

	return Decision{
		Outcome:  out,
		Action:   Redirect,
		Location: SignInURL(e.routes.SignInPath(), path, reason),
		Status:   http.StatusTemporaryRedirect,
	}
}

// SignInURL — "/signin?from=<path>" и, если задан, флаг причины "&<reason>=true".
func SignInURL(signIn, from, reason string) string {
	u := signIn + "?from=" + url.QueryEscape(from)
	if reason != "" {
		u += "&" + reason + "=true"
	}

	return u
}

// IsPublic — путь не требует аутентификации.
func (e *Edge) IsPublic(path string) bool { return e.routes.IsPublic(path) }

// Canonical сводит путь к каноническому виду: без "." и "..", без двойных
// слешей, с сохранённым завершающим "/". ok=false — путь неканонический
// (после очистки другой или в escaped-виде есть закодированный разделитель);
// такой путь нельзя классифицировать по префиксу: апстрим может
// нормализовать его иначе.
func Canonical(decoded, escaped string) (clean string, ok bool) {
	clean = path.Clean("/" + decoded)
	if strings.HasSuffix(decoded, "/") && clean != "/" {
		clean += "/"
	}

	lower := strings.ToLower(escaped)
	encodedSep := strings.Contains(lower, "%2f") || strings.Contains(lower, "%5c")

	return clean, clean == decoded && !encodedSep && !strings.Contains(decoded, `\`)
}

// Refuse — отказ для неканонического пути: публичность не учитывается,
// исход определяется только токенами; валидный токен тоже не пропускает.
func (e *Edge) Refuse(path string, st TokenState) Decision {
	var out Outcome
	switch st.Access {
	case token.Missing:
		out = ProtectedNoToken
	case token.Expired:
		out = ProtectedExpiredToken
	default:
		out = ProtectedInvalidToken
	}

	return e.deny(out, path, st)
}
