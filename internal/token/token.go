// token — разбор access-токена без проверки подписи.
//
// Пакет читает только payload JWT (exp, iat и профиль пользователя), чтобы
// гейт мог решить «пускать или редиректить» до обращения к API. Это не граница
// безопасности: подпись проверяет бэкенд на каждом запросе.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken — cookie с access-токеном отсутствует или пустая.
	// Гейт: редирект на вход / 401 "Authentication required".
	ErrNoToken = errors.New("no token")

	// ErrExpired — exp не позже текущего момента.
	// Гейт: редирект с expired=true / 401 "Token expired".
	ErrExpired = errors.New("token expired")

	// ErrMalformed — payload не декодируется или в нём нет exp.
	// Гейт: редирект с invalid=true / 401 "Invalid authentication token".
	ErrMalformed = errors.New("malformed token")
)

// Claims — данные, которые фронтенд достаёт из access-токена.
type Claims struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	IssuedAt  time.Time `json:"issuedAt"`
}

type payload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// Decode разбирает payload токена. Подпись и alg не проверяются.
func Decode(raw string) (*Claims, error) {
	const op = "token.Decode"

	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	var p payload
	_, _, err := parser.ParseUnverified(raw, &p)
	// ErrTokenUnverifiable означает лишь неизвестный alg: payload к этому моменту уже разобран.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	c := &Claims{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	}
	if c.ID == "" {
		c.ID = p.Subject
	}
	if p.ExpiresAt != nil {
		c.ExpiresAt = p.ExpiresAt.Time.UTC()
	}
	if p.IssuedAt != nil {
		c.IssuedAt = p.IssuedAt.Time.UTC()
	}

	return c, nil
}

// Status — результат осмотра токена.
type Status int

const (
	Missing Status = iota
	Valid
	Expired
	Malformed
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Err возвращает ошибку таксономии для статуса; для Valid — nil.
func (s Status) Err() error {
	switch s {
	case Valid:
		return nil
	case Missing:
		return ErrNoToken
	case Expired:
		return ErrExpired
	default:
		return ErrMalformed
	}
}

// Inspection — статус токена и, если удалось, его claims.
type Inspection struct {
	Status Status
	Claims *Claims
}

// Inspect классифицирует токен на момент now.
// Отсутствие exp трактуется как Malformed (fail closed).
func Inspect(raw string, now time.Time) Inspection {
	if raw == "" {
		return Inspection{Status: Missing}
	}

	c, err := Decode(raw)
	if err != nil {
		return Inspection{Status: Malformed}
	}

	if c.ExpiresAt.IsZero() {
		return Inspection{Status: Malformed, Claims: c}
	}

	if !c.ExpiresAt.After(now) {
		return Inspection{Status: Expired, Claims: c}
	}

	return Inspection{Status: Valid, Claims: c}
}

// IsValid — токен декодируется, содержит exp и exp > now.
func IsValid(raw string, now time.Time) bool {
	return Inspect(raw, now).Status == Valid
}
