package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/blastify-gateway/internal/gate"
	"github.com/pribylovaa/blastify-gateway/internal/token"
)

// sessionData — Reauthenticatable: есть refresh-токен, а access просрочен или отсутствует.
type sessionData struct {
	User              *token.Claims `json:"user,omitempty"`
	ExpiresAt         *time.Time    `json:"expiresAt,omitempty"`
	Reauthenticatable bool          `json:"reauthenticatable"`
	View              gate.View     `json:"view"`
}

// Session отдаёт оболочке страницы то, что она иначе вычисляла бы сама:
// профиль из токена и решение Client для пути из ?path=.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}

	_, hasRefresh := h.store.RefreshToken(r)
	st := gate.TokenState{Access: token.Missing, HasRefresh: hasRefresh}

	claims, ok := gate.ClaimsFrom(r.Context())
	if ok {
		st.Access = token.Valid
	} else if raw, found := h.store.AccessToken(r); found {
		insp := token.Inspect(raw, h.now())
		st.Access = insp.Status
		if insp.Status == token.Valid {
			claims = insp.Claims
		}
	}

	out := sessionData{
		Reauthenticatable: hasRefresh && st.Access != token.Valid,
		View:              h.client.Render(path, gate.AuthState{State: st}),
	}
	if claims != nil {
		out.User = claims
		exp := claims.ExpiresAt
		out.ExpiresAt = &exp
	}

	writeJSON(w, http.StatusOK, response{Success: true, Data: out})
}
