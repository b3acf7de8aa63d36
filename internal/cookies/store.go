// cookies — хранилище пары токенов в cookie браузера.
//
// Куки не HttpOnly: оболочка фронтенда читает их, чтобы решить, что рисовать,
// до ответа API. Secure включается только в production.
package cookies

import (
	"net/http"
	"time"
)

const (
	AccessTokenName  = "accessToken"
	RefreshTokenName = "refreshToken"

	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Pair — сессионная пара токенов.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Options — атрибуты cookie. Нулевые TTL заменяются значениями по умолчанию.
type Options struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Store читает и пишет cookie с токенами.
type Store struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewStore(o Options) *Store {
	s := &Store{
		secure:     o.Secure,
		accessTTL:  o.AccessTTL,
		refreshTTL: o.RefreshTTL,
		now:        o.Now,
	}

	if s.accessTTL <= 0 {
		s.accessTTL = DefaultAccessTTL
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = DefaultRefreshTTL
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

func (s *Store) SetAccessToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(AccessTokenName, token, s.accessTTL))
}

func (s *Store) SetRefreshToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(RefreshTokenName, token, s.refreshTTL))
}

// SetPair пишет обе cookie; пустой refresh-токен не трогает существующую.
func (s *Store) SetPair(w http.ResponseWriter, p Pair) {
	s.SetAccessToken(w, p.AccessToken)
	if p.RefreshToken != "" {
		s.SetRefreshToken(w, p.RefreshToken)
	}
}

func (s *Store) AccessToken(r *http.Request) (string, bool) {
	return read(r, AccessTokenName)
}

func (s *Store) RefreshToken(r *http.Request) (string, bool) {
	return read(r, RefreshTokenName)
}

// Clear удаляет обе cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenName, RefreshTokenName} {
		c := s.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (s *Store) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  s.now().Add(ttl).UTC(),
		MaxAge:   int(ttl / time.Second),
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}

	return c.Value, true
}
