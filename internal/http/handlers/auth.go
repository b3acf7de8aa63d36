package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/blastify-gateway/internal/clients/backend"
	"github.com/pribylovaa/blastify-gateway/internal/cookies"
	apierrors "github.com/pribylovaa/blastify-gateway/internal/errors"
	"github.com/pribylovaa/blastify-gateway/internal/token"
	logctx "github.com/pribylovaa/blastify-gateway/pkg/log"
	"github.com/pribylovaa/blastify-gateway/pkg/redact"
)

// authData — data успешного входа/регистрации. Токены уходят только в cookie.
type authData struct {
	User *backend.User `json:"user,omitempty"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in backend.LoginRequest
	if err := decodeStrict(r, &in); err != nil || in.Email == "" || in.Password == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	lg := logctx.From(r.Context()).With(slog.String("email", redact.Email(in.Email)))

	res, err := h.backend.Login(r.Context(), in)
	if err != nil {
		lg.Warn("login_failed", slog.String("err", err.Error()))
		apierrors.WriteError(w, r, err)
		return
	}

	h.issue(w, r, lg, "login_ok", res)
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in backend.RegisterRequest
	if err := decodeStrict(r, &in); err != nil || in.Email == "" || in.Password == "" || in.Name == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	lg := logctx.From(r.Context()).With(slog.String("email", redact.Email(in.Email)))

	res, err := h.backend.Register(r.Context(), in)
	if err != nil {
		lg.Warn("register_failed", slog.String("err", err.Error()))
		apierrors.WriteError(w, r, err)
		return
	}

	h.issue(w, r, lg, "register_ok", res)
}

// RefreshToken берёт refresh-токен из cookie, а если её нет — из тела
// {"refreshToken": "..."}. Пустое тело допустимо.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.store.RefreshToken(r)
	if !ok {
		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeStrict(r, &in); err != nil && !errors.Is(err, io.EOF) {
			apierrors.WriteError(w, r, apierrors.ErrBadRequest)
			return
		}
		rt = strings.TrimSpace(in.RefreshToken)
	}

	if rt == "" {
		apierrors.WriteError(w, r, apierrors.ErrRefreshRequired)
		return
	}

	lg := logctx.From(r.Context())

	res, err := h.backend.Refresh(r.Context(), rt)
	if err != nil {
		// Отвергнутый refresh-токен бесполезен: стираем пару, чтобы гейт
		// не предлагал повторную попытку (refresh=true).
		if backend.IsStatus(err, http.StatusUnauthorized) || backend.IsStatus(err, http.StatusForbidden) {
			h.store.Clear(w)
		}
		lg.Warn("refresh_failed", slog.String("err", err.Error()))
		apierrors.WriteError(w, r, err)
		return
	}

	if res.RefreshToken == "" {
		res.RefreshToken = rt
	}

	h.issue(w, r, lg, "refresh_ok", res)
}

// Logout завершает сессию. Вызов API — best effort: cookie стираются в любом
// случае, а токен, если есть список отзыва, попадает в него до своего exp.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	lg := logctx.From(r.Context())

	if raw, ok := h.store.AccessToken(r); ok {
		if err := h.backend.Logout(r.Context(), raw); err != nil {
			lg.Warn("logout_upstream_failed", slog.String("err", err.Error()))
		}
		h.revoke(r, lg, raw)
	}

	h.store.Clear(w)
	lg.Info("logout_ok")
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Logged out successfully"})
}

func (h *Handlers) revoke(r *http.Request, lg *slog.Logger, raw string) {
	if h.revocations == nil {
		return
	}

	insp := token.Inspect(raw, h.now())
	if insp.Status != token.Valid {
		return // просроченный или битый токен гейт и так не пустит
	}

	if err := h.revocations.Revoke(r.Context(), raw, insp.Claims.ExpiresAt); err != nil {
		lg.Error("revoke_failed",
			slog.String("token", redact.Token(raw)),
			slog.String("err", err.Error()),
		)
	}
}

// issue пишет пару в cookie и отвечает профилем. Ответ API без access-токена
// считаем сбоем апстрима.
func (h *Handlers) issue(w http.ResponseWriter, r *http.Request, lg *slog.Logger, event string, res *backend.AuthResult) {
	if res == nil || res.AccessToken == "" {
		lg.Error("upstream_missing_tokens")
		apierrors.WriteMessage(w, r, http.StatusBadGateway, "Upstream unavailable")
		return
	}

	h.store.SetPair(w, cookies.Pair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
	lg.Info(event)

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: res.Message,
		Data:    authData{User: res.User},
	})
}
