package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/blastify-gateway/internal/cookies"
	"github.com/pribylovaa/blastify-gateway/internal/gate"
	"github.com/pribylovaa/blastify-gateway/internal/headers"
	"github.com/pribylovaa/blastify-gateway/internal/http/handlers"
	"github.com/pribylovaa/blastify-gateway/internal/http/middleware"
	"github.com/pribylovaa/blastify-gateway/internal/metrics"
	"github.com/pribylovaa/blastify-gateway/internal/revocation"
	"github.com/pribylovaa/blastify-gateway/internal/routes"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger      *slog.Logger
	Timeout     time.Duration
	Routes      *routes.Table
	Headers     *headers.Set
	Store       *cookies.Store
	Backend     handlers.Backend
	Revocations revocation.List // nil — без списка отзыва
	Metrics     *metrics.Metrics
	Now         func() time.Time
	// APIPrefix — префикс API-путей; по умолчанию "/api".
	APIPrefix string
	// API и Frontend — хендлеры апстримов (обычно proxy.Proxy).
	API      http.Handler
	Frontend http.Handler
}

// NewRouter собирает http.Handler с chi: общий конвейер мидлваров, гейт,
// собственные auth-эндпойнты и проксирование всего остального.
func NewRouter(opts Options) http.Handler {
	if opts.Routes == nil {
		opts.Routes = routes.Default()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}

	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.SecurityHeaders(opts.Headers),      // заголовки на любой ответ, включая 500 от Recover
		middleware.Recover(),                          // безопасно ловим паники
		middleware.RequestID(),                        // X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger, opts.Metrics), // request-scoped логгер и запись "http"
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}
	root.Use(middleware.EdgeGate(gate.NewEdge(opts.Routes), opts.Store, middleware.EdgeGateOptions{
		Now:         opts.Now,
		Revocations: opts.Revocations,
		Metrics:     opts.Metrics,
	}))

	h := handlers.New(handlers.Options{
		Backend:     opts.Backend,
		Store:       opts.Store,
		Client:      gate.NewClient(opts.Routes),
		Revocations: opts.Revocations,
		Now:         opts.Now,
	})

	root.Route(opts.APIPrefix, func(r chi.Router) {
		registerAuthRoutes(r, h)

		// Остальной API — как есть, с токеном из cookie в Authorization.
		r.With(middleware.ForwardBearer(opts.Store)).Handle("/*", opts.API)
	})

	root.Handle("/*", opts.Frontend)
	return root
}

// registerAuthRoutes — эндпойнты, где шлюз сам пишет или стирает cookie.
func registerAuthRoutes(r chi.Router, h *handlers.Handlers) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/refresh-token", h.RefreshToken)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/session", h.Session)
}
