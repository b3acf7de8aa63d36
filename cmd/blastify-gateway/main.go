package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/blastify-gateway/internal/clients/backend"
	"github.com/pribylovaa/blastify-gateway/internal/config"
	"github.com/pribylovaa/blastify-gateway/internal/cookies"
	"github.com/pribylovaa/blastify-gateway/internal/headers"
	gwhttp "github.com/pribylovaa/blastify-gateway/internal/http"
	"github.com/pribylovaa/blastify-gateway/internal/http/middleware"
	"github.com/pribylovaa/blastify-gateway/internal/metrics"
	"github.com/pribylovaa/blastify-gateway/internal/proxy"
	"github.com/pribylovaa/blastify-gateway/internal/revocation"
	"github.com/pribylovaa/blastify-gateway/internal/routes"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting blastify-gateway", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	var revoked revocation.List
	if cfg.Redis.URL != "" {
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		rl, err := revocation.NewRedis(pingCtx, cfg.Redis.URL, cfg.Redis.Prefix)
		cancel()
		if err != nil {
			log.Error("redis_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
		revoked = rl

		defer func() {
			if cerr := rl.Close(); cerr != nil {
				log.Warn("redis_close_failed", slog.String("err", cerr.Error()))
			}
		}()

		log.Info("revocation_enabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	upstreams, err := proxy.New(proxy.Options{
		APIURL:      cfg.Upstreams.APIURL,
		FrontendURL: cfg.Upstreams.FrontendURL,
		APIPrefix:   cfg.Upstreams.APIPrefix,
		Timeout:     cfg.Timeouts.Upstream,
		Metrics:     m,
	})
	if err != nil {
		log.Error("proxy_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	rt := routes.DefaultOptions()
	rt.APIPrefix = cfg.Upstreams.APIPrefix
	rt.SignInPath = cfg.Auth.SignInPath
	rt.DashboardPath = cfg.Auth.DashboardPath

	secHeaders := headers.New(headers.Options{
		Production:      cfg.IsProduction(),
		APIOrigin:       cfg.ResolvedAPIOrigin(),
		ExtraConnectSrc: cfg.Security.ExtraConnectSrc,
	})

	gateway := gwhttp.NewRouter(gwhttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Routes:  routes.New(rt),
		Headers: secHeaders,
		Store: cookies.NewStore(cookies.Options{
			Secure:     cfg.IsProduction(),
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		}),
		Backend:     backend.New(cfg.Upstreams.APIURL, cfg.Timeouts.Upstream),
		Revocations: revoked,
		Metrics:     m,
		APIPrefix:   cfg.Upstreams.APIPrefix,
		API:         upstreams.API(),
		Frontend:    upstreams.Frontend(),
	})

	var ready int32 // 0 — not ready; 1 — ready

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           newPublicMux(gateway, secHeaders, &ready),
		ReadHeaderTimeout: 5 * time.Second,
	}

	adminAddr := cfg.Admin.Addr()
	adminSrv := &http.Server{
		Addr:              adminAddr,
		Handler:           newAdminMux(prometheus.DefaultGatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	adminLn, err := net.Listen("tcp", adminAddr)
	if err != nil {
		log.Error("admin_listen_failed", slog.String("addr", adminAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start",
		slog.String("addr", httpAddr),
		slog.String("admin", adminAddr),
		slog.String("api", cfg.Upstreams.APIURL),
		slog.String("frontend", cfg.Upstreams.FrontendURL),
	)

	// Обе горутины шлют только реальные ошибки; первая из них останавливает шлюз.
	serveErrCh := make(chan error, 2)
	serve := func(srv *http.Server, l net.Listener) {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}
	go serve(httpSrv, ln)
	go serve(adminSrv, adminLn)

	atomic.StoreInt32(&ready, 1)
	log.Info("gateway_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		log.Error("http_serve_failed", slog.String("err", err.Error()))
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin_shutdown_incomplete", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
}

// newPublicMux — публичный listener: пробы и шлюз. Пробы тоже получают
// заголовки безопасности; /metrics здесь нет, он уходит в admin-listener.
func newPublicMux(gateway http.Handler, set *headers.Set, ready *int32) *http.ServeMux {
	withHeaders := middleware.SecurityHeaders(set)

	mux := http.NewServeMux()
	mux.Handle("/livez", withHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})))

	mux.Handle("/healthz", withHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})))

	mux.Handle("/", gateway)
	return mux
}

// newAdminMux — служебный listener с метриками Prometheus.
func newAdminMux(g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
