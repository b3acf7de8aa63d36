// proxy — пересылка запросов в апстримы: /api/* в REST API, остальное во фронтенд.
package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	apierrors "github.com/pribylovaa/blastify-gateway/internal/errors"
	"github.com/pribylovaa/blastify-gateway/internal/metrics"
	logctx "github.com/pribylovaa/blastify-gateway/pkg/log"
)

const (
	upstreamAPI      = "api"
	upstreamFrontend = "frontend"
)

// Options — адреса апстримов и зависимости.
type Options struct {
	APIURL      string
	FrontendURL string
	// APIPrefix срезается с пути перед склейкой с путём APIURL; по умолчанию "/api".
	APIPrefix string
	// Timeout — ожидание заголовков ответа апстрима; 0 — без ограничения.
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// Proxy — пара обратных прокси; маршрутизацию между ними делает роутер.
type Proxy struct {
	api      *httputil.ReverseProxy
	frontend *httputil.ReverseProxy
}

func New(o Options) (*Proxy, error) {
	const op = "proxy.New"

	apiURL, err := parseUpstream(o.APIURL)
	if err != nil {
		return nil, fmt.Errorf("%s: api: %w", op, err)
	}
	feURL, err := parseUpstream(o.FrontendURL)
	if err != nil {
		return nil, fmt.Errorf("%s: frontend: %w", op, err)
	}

	prefix := strings.TrimSuffix(o.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = o.Timeout

	p := &Proxy{}

	p.api = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			// Срезаем префикс и в декодированном, и в escaped-виде: апстрим
			// получает ровно тот путь, который классифицировал гейт.
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, prefix)
			pr.Out.URL.RawPath = strings.TrimPrefix(pr.In.URL.EscapedPath(), prefix)
			pr.SetURL(apiURL)
			pr.SetXForwarded()
		},
		Transport:    transport,
		ErrorHandler: errorHandler(upstreamAPI, true, o.Metrics),
	}

	p.frontend = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(feURL)
			pr.SetXForwarded()
		},
		Transport:    transport,
		ErrorHandler: errorHandler(upstreamFrontend, false, o.Metrics),
	}

	return p, nil
}

// API — хендлер для путей под APIPrefix.
func (p *Proxy) API() http.Handler { return p.api }

// Frontend — хендлер для страниц и статики.
func (p *Proxy) Frontend() http.Handler { return p.frontend }

func parseUpstream(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("upstream url must be absolute")
	}

	return u, nil
}

// errorHandler — апстрим недоступен: API получает JSON-конверт, страницы — текст.
func errorHandler(name string, jsonBody bool, m *metrics.Metrics) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		m.UpstreamError(name)
		logctx.From(r.Context()).Error("upstream_failed",
			slog.String("upstream", name),
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)

		if jsonBody {
			apierrors.WriteMessage(w, r, http.StatusBadGateway, "Upstream unavailable")
			return
		}

		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
	}
}
