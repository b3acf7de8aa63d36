package middleware

import (
	"net/http"

	"github.com/pribylovaa/blastify-gateway/internal/cookies"
)

// ForwardBearer переносит access-токен из cookie в Authorization: Bearer для
// запросов, уходящих в API. Явно переданный заголовок не трогается.
func ForwardBearer(store *cookies.Store) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				if tok, ok := store.AccessToken(r); ok {
					r.Header.Set("Authorization", "Bearer "+tok)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
