package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pribylovaa/blastify-gateway/internal/clients/backend"
	"github.com/pribylovaa/blastify-gateway/internal/cookies"
	"github.com/pribylovaa/blastify-gateway/internal/gate"
	"github.com/pribylovaa/blastify-gateway/internal/revocation"
)

//go:generate mockgen -source=handlers.go -destination=../../../mocks/backend.go -package=mocks

// Backend — auth-методы API, которые вызывают хендлеры.
type Backend interface {
	Login(ctx context.Context, in backend.LoginRequest) (*backend.AuthResult, error)
	Register(ctx context.Context, in backend.RegisterRequest) (*backend.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*backend.AuthResult, error)
	Logout(ctx context.Context, accessToken string) error
}

// Options — зависимости хендлеров. Revocations и Now опциональны.
type Options struct {
	Backend     Backend
	Store       *cookies.Store
	Client      *gate.Client
	Revocations revocation.List
	Now         func() time.Time
}

// Handlers агрегирует зависимости auth-эндпойнтов.
type Handlers struct {
	backend     Backend
	store       *cookies.Store
	client      *gate.Client
	revocations revocation.List
	now         func() time.Time
}

func New(o Options) *Handlers {
	if o.Now == nil {
		o.Now = time.Now
	}

	return &Handlers{
		backend:     o.Backend,
		store:       o.Store,
		client:      o.Client,
		revocations: o.Revocations,
		now:         o.Now,
	}
}

// response — успешный ответ в формате API: {success, message, data}.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
