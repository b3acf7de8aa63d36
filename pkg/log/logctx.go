// log переносит request-scoped *slog.Logger через context.Context.
//
// Логгер кладёт middleware.Logging (уже с request_id), а гейт, прокси и
// хендлеры достают его через From и дописывают свои атрибуты.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into возвращает дочерний контекст с логгером l.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста; если его нет — slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}

// With дописывает атрибуты к логгеру из контекста и кладёт результат обратно.
func With(ctx context.Context, args ...any) context.Context {
	return Into(ctx, From(ctx).With(args...))
}
