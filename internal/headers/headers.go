// headers — фиксированный набор заголовков безопасности.
//
// Набор собирается при старте из конфигурации и не меняется; middleware
// ставит его на каждый ответ шлюза.
package headers

import (
	"net/http"
	"strings"
)

// Options — входные данные для набора.
type Options struct {
	// Production включает Content-Security-Policy.
	Production bool
	// APIOrigin добавляется в connect-src CSP.
	APIOrigin string
	// ExtraConnectSrc — дополнительные origin для connect-src (например, платёжный шлюз).
	ExtraConnectSrc []string
}

type pair struct{ name, value string }

// Set — неизменяемый набор заголовков.
type Set struct {
	pairs []pair
}

func New(o Options) *Set {
	s := &Set{pairs: []pair{
		{"X-DNS-Prefetch-Control", "on"},
		{"Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload"},
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
	}}

	if o.Production {
		s.pairs = append(s.pairs, pair{"Content-Security-Policy", contentSecurityPolicy(o)})
	}

	return s
}

func contentSecurityPolicy(o Options) string {
	connect := []string{"'self'"}
	if o.APIOrigin != "" {
		connect = append(connect, o.APIOrigin)
	}
	for _, src := range o.ExtraConnectSrc {
		if src = strings.TrimSpace(src); src != "" {
			connect = append(connect, src)
		}
	}

	directives := []string{
		"default-src 'self'",
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: blob:",
		"font-src 'self' data:",
		"connect-src " + strings.Join(connect, " "),
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}

	return strings.Join(directives, "; ")
}

// Apply записывает набор в h, перезаписывая одноимённые заголовки.
func (s *Set) Apply(h http.Header) {
	for _, p := range s.pairs {
		h.Set(p.name, p.value)
	}
}

// Pairs возвращает копию набора в виде map.
func (s *Set) Pairs() map[string]string {
	out := make(map[string]string, len(s.pairs))
	for _, p := range s.pairs {
		out[p.name] = p.value
	}

	return out
}
