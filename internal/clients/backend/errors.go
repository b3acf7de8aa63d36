package backend

import (
	"context"
	"errors"
	"fmt"
)

// HTTPError — не-2xx ответ API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus — err (или обёрнутая ошибка) является HTTPError с данным кодом.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}

	return false
}

type requestIDKey struct{}

// WithRequestID кладёт X-Request-Id для исходящих вызовов API.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom достаёт X-Request-Id, положенный WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
