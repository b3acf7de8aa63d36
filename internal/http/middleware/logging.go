package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/blastify-gateway/internal/metrics"
	logctx "github.com/pribylovaa/blastify-gateway/pkg/log"
)

// Logging кладёт request-scoped логгер в контекст и пишет одну запись "http"
// на запрос. m может быть nil.
func Logging(l *slog.Logger, m *metrics.Metrics) Middleware {
	if l == nil {
		l = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := r.Header.Get("X-Request-Id"); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(logctx.Into(r.Context(), reqLogger))

			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)
			dur := time.Since(start)

			m.ObserveRequest(r.Method, sw.Status(), dur)

			logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelInfo, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.Status()),
				slog.Duration("dur", dur),
				slog.Int("bytes", sw.count),
			)
		})
	}
}
