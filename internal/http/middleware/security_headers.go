package middleware

import (
	"net/http"

	"github.com/pribylovaa/blastify-gateway/internal/headers"
)

// SecurityHeaders ставит набор заголовков безопасности на каждый ответ:
// пропущенный, редирект и JSON-отказ. Набор применяется в момент записи
// статуса, поэтому перекрывает одноимённые заголовки апстрима.
func SecurityHeaders(set *headers.Set) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hw := &headerWriter{ResponseWriter: w, set: set}
			next.ServeHTTP(hw, r)
			// Обработчик ничего не записал: net/http ответит 200 сам.
			hw.apply()
		})
	}
}

type headerWriter struct {
	http.ResponseWriter
	set     *headers.Set
	applied bool
}

func (w *headerWriter) apply() {
	if !w.applied {
		w.applied = true
		w.set.Apply(w.ResponseWriter.Header())
	}
}

func (w *headerWriter) WriteHeader(code int) {
	w.apply()
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(p []byte) (int, error) {
	w.apply()
	return w.ResponseWriter.Write(p)
}

func (w *headerWriter) Flush() {
	w.apply()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *headerWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
