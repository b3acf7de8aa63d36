package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/blastify-gateway/internal/cookies"
	apierrors "github.com/pribylovaa/blastify-gateway/internal/errors"
	"github.com/pribylovaa/blastify-gateway/internal/gate"
	"github.com/pribylovaa/blastify-gateway/internal/metrics"
	"github.com/pribylovaa/blastify-gateway/internal/revocation"
	"github.com/pribylovaa/blastify-gateway/internal/token"
	logctx "github.com/pribylovaa/blastify-gateway/pkg/log"
	"github.com/pribylovaa/blastify-gateway/pkg/redact"
)

// EdgeGateOptions — зависимости гейта. Все поля опциональны.
type EdgeGateOptions struct {
	// Now — часы гейта; по умолчанию time.Now.
	Now func() time.Time
	// Revocations — список отозванных токенов; nil выключает проверку.
	Revocations revocation.List
	Metrics     *metrics.Metrics
}

// EdgeGate решает судьбу запроса до апстрима: пропустить, редиректнуть на
// вход или ответить 401 JSON. Любая паника при разборе токена превращается
// в отказ "invalid", а не в 500.
func EdgeGate(edge *gate.Edge, store *cookies.Store, opts EdgeGateOptions) Middleware {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, claims := evaluate(r, edge, store, opts)

			opts.Metrics.GateDecision(d.Outcome.String(), d.Action.String())
			lg := logctx.From(r.Context())

			switch d.Action {
			case gate.Allow:
				if claims != nil {
					r = r.WithContext(gate.WithClaims(r.Context(), claims))
				}
				next.ServeHTTP(w, r)

			case gate.Redirect:
				lg.Info("gate_redirect",
					slog.String("path", r.URL.Path),
					slog.String("outcome", d.Outcome.String()),
				)
				http.Redirect(w, r, d.Location, d.Status)

			default:
				lg.Info("gate_reject",
					slog.String("path", r.URL.Path),
					slog.String("outcome", d.Outcome.String()),
				)
				apierrors.WriteMessage(w, r, d.Status, d.Message)
			}
		})
	}
}

// evaluate — классификация с защитой от паники (fail closed).
func evaluate(r *http.Request, edge *gate.Edge, store *cookies.Store, opts EdgeGateOptions) (d gate.Decision, claims *token.Claims) {
	path, canonical := gate.Canonical(r.URL.Path, r.URL.EscapedPath())
	var st gate.TokenState

	defer func() {
		if rec := recover(); rec != nil {
			logctx.From(r.Context()).Error("gate_panic",
				slog.String("path", path),
				slog.Any("reason", rec),
			)
			d, claims = edge.Deny(gate.ProtectedInvalidToken, path, st), nil
		}
	}()

	raw, _ := store.AccessToken(r)
	_, st.HasRefresh = store.RefreshToken(r)

	insp := token.Inspect(raw, opts.Now())
	st.Access = insp.Status

	if !canonical {
		logctx.From(r.Context()).Warn("gate_non_canonical_path",
			slog.String("path", r.URL.EscapedPath()),
		)
		return edge.Refuse(path, st), nil
	}

	if insp.Status == token.Valid && opts.Revocations != nil && !edge.IsPublic(path) {
		if isRevoked(r.Context(), opts.Revocations, raw) {
			st.Access = token.Malformed
		}
	}

	d = edge.Decide(path, st)
	if d.Action == gate.Allow && st.Access == token.Valid {
		claims = insp.Claims
	}

	return d, claims
}

// isRevoked — ошибки Redis не блокируют запрос: подпись всё равно проверит API.
func isRevoked(ctx context.Context, list revocation.List, raw string) bool {
	revoked, err := list.IsRevoked(ctx, raw)
	if err != nil {
		logctx.From(ctx).Warn("revocation_lookup_failed",
			slog.String("token", redact.Token(raw)),
			slog.String("err", err.Error()),
		)
		return false
	}

	return revoked
}
