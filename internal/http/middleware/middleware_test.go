package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blastify-gateway/internal/clients/backend"
	"github.com/pribylovaa/blastify-gateway/internal/headers"
)

// capHandler — тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs последней записи в map[string]any;
//   - считает записи и запоминает сообщение последней.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	msgs    []string
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.msgs = append(h.msgs, r.Message)
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

type errBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, m1, m2).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	var seenID, seenCtxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get("X-Request-Id")
		seenCtxID = backend.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get("X-Request-Id")
	require.Len(t, respID, 36) // UUID в канонической записи
	require.Equal(t, respID, seenID)
	require.Equal(t, respID, seenCtxID)
}

func TestRequestID_UseExisting(t *testing.T) {
	const given = "abc123-existing-id"
	var seenCtxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCtxID = backend.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := makeReq("/rid2")
	req.Header.Set("X-Request-Id", given)
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get("X-Request-Id"))
	require.Equal(t, given, seenCtxID)
}

func TestRequestID_ReplacesOversized(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	req := makeReq("/rid3")
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	req.Header.Set("X-Request-Id", string(long))
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Len(t, rr.Header().Get("X-Request-Id"), 36)
}

func TestForwardBearer(t *testing.T) {
	store := newStore()
	var got string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	})
	chain := Chain(h, ForwardBearer(store))

	// 1) Cookie есть — заголовок появляется.
	req := makeReq("/api/campaigns")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok-1"})
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "Bearer tok-1", got)

	// 2) Явный заголовок не перетирается.
	req = makeReq("/api/campaigns")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok-1"})
	req.Header.Set("Authorization", "Bearer explicit")
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "Bearer explicit", got)

	// 3) Ни cookie, ни заголовка.
	chain.ServeHTTP(httptest.NewRecorder(), makeReq("/api/campaigns"))
	require.Empty(t, got)
}

func TestTimeout_SetsDeadline_WhenAbsent(t *testing.T) {
	var hasDeadline bool
	var left time.Duration

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, ok := r.Context().Deadline()
		hasDeadline = ok
		if ok {
			left = time.Until(dl)
		}
	})

	Chain(h, Timeout(50*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout"))

	require.True(t, hasDeadline)
	require.Greater(t, left, time.Duration(0))
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	var childDL time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := makeReq("/timeout2").WithContext(parent)

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), req)

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var hasDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout3"))
	require.False(t, hasDeadline)
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	h := &capHandler{}
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	req := makeReq("/panic")
	req.Header.Set("X-Request-Id", "rid-1")
	Chain(panicHandler, Recover(), Logging(slog.New(h), nil)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body errBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "Internal server error", body.Message)
	require.Equal(t, "rid-1", body.RequestID)
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestRecover_RepanicsAbortHandler(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Chain(h, Recover()).ServeHTTP(httptest.NewRecorder(), makeReq("/abort"))
	})
}

func TestLogging_WritesRecord_WithStatusDurBytesAndRequestID(t *testing.T) {
	h := &capHandler{}
	logger := slog.New(h)

	const rid = "rid-456"
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Без WriteHeader — статус должен стать 200 после Write.
		_, _ = w.Write([]byte("0123456789"))
	})

	// RequestID до Logging, чтобы id попал в attrs лога.
	handler := Chain(final, RequestID(), Logging(logger, nil))

	rr := httptest.NewRecorder()
	req := makeReq("/log")
	req.Header.Set("X-Request-Id", rid)
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)

	method, _ := h.attrs["method"].(string)
	path, _ := h.attrs["path"].(string)
	status, _ := h.attrs["status"].(int64) // slog хранит числа как int64
	bytes, _ := h.attrs["bytes"].(int64)
	ridAttr, _ := h.attrs["request_id"].(string)

	require.Equal(t, http.MethodGet, method)
	require.Equal(t, "/log", path)
	require.EqualValues(t, http.StatusOK, status)
	require.EqualValues(t, 10, bytes)
	require.Equal(t, rid, ridAttr)

	_, hasDur := h.attrs["dur"]
	require.True(t, hasDur)
}

func TestStatusWriter_CountsBytes_AndDefaultStatus200(t *testing.T) {
	sw := newStatusWriter(httptest.NewRecorder())

	_, _ = sw.Write([]byte("abcd"))

	require.Equal(t, http.StatusOK, sw.Status())
	require.Equal(t, 4, sw.count)
}

func TestStatusWriter_KeepsFirstStatus(t *testing.T) {
	sw := newStatusWriter(httptest.NewRecorder())

	sw.WriteHeader(http.StatusTemporaryRedirect)
	sw.WriteHeader(http.StatusOK)

	require.Equal(t, http.StatusTemporaryRedirect, sw.Status())
}

func TestSecurityHeaders_OnEveryResponse(t *testing.T) {
	set := headers.New(headers.Options{})

	cases := map[string]http.HandlerFunc{
		"write": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		},
		"redirect": func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/signin", http.StatusTemporaryRedirect)
		},
		"upstream-override": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.WriteHeader(http.StatusUnauthorized)
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Chain(h, SecurityHeaders(set)).ServeHTTP(rr, makeReq("/x"))

			for k, v := range set.Pairs() {
				require.Equal(t, v, rr.Header().Get(k), k)
			}
			require.Empty(t, rr.Header().Get("Content-Security-Policy"))
		})
	}
}

func TestSecurityHeaders_CSPInProduction_EmptyHandler(t *testing.T) {
	set := headers.New(headers.Options{Production: true, APIOrigin: "https://api.blastify.id"})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	Chain(h, SecurityHeaders(set)).ServeHTTP(rr, makeReq("/"))

	require.Contains(t, rr.Header().Get("Content-Security-Policy"), "https://api.blastify.id")
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}
