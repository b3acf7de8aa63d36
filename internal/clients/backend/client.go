// backend — REST-клиент к API Blastify для auth-эндпойнтов шлюза.
//
// Остальные вызовы API идут через reverse proxy без разбора тела; этот клиент
// нужен только там, где шлюз сам пишет или стирает cookie с токенами.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// User — профиль пользователя в ответах API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResult — пользователь и выданная пара токенов.
type AuthResult struct {
	Message      string `json:"-"`
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// envelope — общий формат ответа API: {success, message, data}.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client — HTTP-клиент API. Безопасен для конкурентного использования.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент; timeout <= 0 означает 15s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login обменивает e-mail/пароль на пару токенов.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResult, error) {
	var out AuthResult
	msg, err := c.post(ctx, "/auth/login", "", in, &out)
	if err != nil {
		return nil, fmt.Errorf("backend.Login: %w", err)
	}

	out.Message = msg
	return &out, nil
}

// Register создаёт аккаунт; API сразу выдаёт пару токенов.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	msg, err := c.post(ctx, "/auth/register", "", in, &out)
	if err != nil {
		return nil, fmt.Errorf("backend.Register: %w", err)
	}

	out.Message = msg
	return &out, nil
}

// Refresh выпускает новую пару по refresh-токену.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	var out AuthResult
	msg, err := c.post(ctx, "/auth/refresh-token", "", refreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, fmt.Errorf("backend.Refresh: %w", err)
	}

	out.Message = msg
	return &out, nil
}

// Logout завершает сессию на стороне API.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if _, err := c.post(ctx, "/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("backend.Logout: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path, bearer string, body, out any) (string, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if rid := RequestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode envelope: %w", decodeErr)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode data: %w", err)
		}
	}

	return env.Message, nil
}
