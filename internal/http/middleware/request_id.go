package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/blastify-gateway/internal/clients/backend"
)

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если есть;
//  2. иначе генерирует UUID v4;
//  3. кладёт id в Response Header, Request Header (его прочитают прокси и
//     errors.WriteError) и в контекст для исходящих вызовов API.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			ctx := backend.WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
