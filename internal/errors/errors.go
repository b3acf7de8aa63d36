// errors стандартизирует JSON-ответы об ошибках шлюза.
//
// Формат совпадает с ответами API Blastify, чтобы фронтенд разбирал их одинаково:
//
//	{"success": false, "message": "...", "request_id": "..."}
//
// Детали внутренних ошибок наружу не отдаются.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/blastify-gateway/internal/clients/backend"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrBadRequest — тело запроса не разобралось или не прошло проверку. HTTP 400.
	ErrBadRequest = errors.New("bad request")

	// ErrRefreshRequired — для обновления пары нет refresh-токена. HTTP 401.
	ErrRefreshRequired = errors.New("refresh token required")
)

// APIError — единый формат ошибки для фронта.
type APIError struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500, чтобы не маскировать баг;
//   - *backend.HTTPError — статус и сообщение API пробрасываются как есть
//     (5xx API превращаются в 502, сообщение скрывается);
//   - ErrBadRequest -> 400, ErrRefreshRequired -> 401;
//   - DeadlineExceeded -> 504, Canceled -> 499;
//   - прочее -> 500.
func ToHTTP(err error) (int, APIError) {
	var httpErr *backend.HTTPError

	switch {
	case err == nil:
		return http.StatusInternalServerError, APIError{Message: "Internal server error"}
	case errors.As(err, &httpErr):
		if httpErr.StatusCode >= http.StatusInternalServerError {
			return http.StatusBadGateway, APIError{Message: "Upstream unavailable"}
		}
		return httpErr.StatusCode, APIError{Message: httpErr.Message}
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, APIError{Message: "Invalid request body"}
	case errors.Is(err, ErrRefreshRequired):
		return http.StatusUnauthorized, APIError{Message: "Refresh token required"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, APIError{Message: "Upstream timeout"}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, APIError{Message: "Request canceled"}
	default:
		return http.StatusInternalServerError, APIError{Message: "Internal server error"}
	}
}

// WriteError — хелпер для HTTP-хендлеров.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	write(w, r, status, resp)
}

// WriteMessage пишет отказ с заданным статусом и сообщением (используется гейтом).
func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	write(w, r, status, APIError{Message: msg})
}

func write(w http.ResponseWriter, r *http.Request, status int, resp APIError) {
	resp.Success = false

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
