package token

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// mint — HS256-токен с произвольными claims; подпись гейту не важна.
func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func seg(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

func TestDecode_FullClaims(t *testing.T) {
	t.Parallel()

	raw := mint(t, jwt.MapClaims{
		"id":    "usr_42",
		"name":  "Rina",
		"email": "rina@blastify.id",
		"role":  "client",
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
	})

	c, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "usr_42", c.ID)
	require.Equal(t, "Rina", c.Name)
	require.Equal(t, "rina@blastify.id", c.Email)
	require.Equal(t, "client", c.Role)
	require.True(t, c.ExpiresAt.Equal(now.Add(time.Hour)))
	require.True(t, c.IssuedAt.Equal(now))
}

func TestDecode_SubjectFallback(t *testing.T) {
	t.Parallel()

	c, err := Decode(mint(t, jwt.MapClaims{"sub": "usr_7", "exp": now.Unix()}))
	require.NoError(t, err)
	require.Equal(t, "usr_7", c.ID)
}

func TestDecode_IgnoresSignatureAndUnknownAlg(t *testing.T) {
	t.Parallel()

	raw := seg(`{"alg":"XYZ","typ":"JWT"}`) + "." + seg(`{"id":"u1","exp":1900000000}`) + ".garbage"

	c, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", c.ID)
	require.Equal(t, int64(1900000000), c.ExpiresAt.Unix())
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"one_segment":      "abc",
		"two_segments":     "abc.def",
		"payload_not_b64":  seg(`{"alg":"HS256"}`) + ".!!!.sig",
		"payload_not_json": seg(`{"alg":"HS256"}`) + "." + seg("not json") + ".sig",
		"header_not_json":  seg("nope") + "." + seg(`{"exp":1}`) + ".sig",
		"exp_is_string":    seg(`{"alg":"HS256"}`) + "." + seg(`{"exp":"tomorrow"}`) + ".sig",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()

	_, err := Decode("")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Status
	}{
		{name: "missing", raw: "", want: Missing},
		{name: "valid", raw: mint(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}), want: Valid},
		{name: "valid_one_second_left", raw: mint(t, jwt.MapClaims{"exp": now.Add(time.Second).Unix()}), want: Valid},
		{name: "expired_equal", raw: mint(t, jwt.MapClaims{"exp": now.Unix()}), want: Expired},
		{name: "expired_one_second_ago", raw: mint(t, jwt.MapClaims{"exp": now.Add(-time.Second).Unix()}), want: Expired},
		{name: "no_exp", raw: mint(t, jwt.MapClaims{"id": "u"}), want: Malformed},
		{name: "garbage", raw: "not-a-jwt", want: Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Inspect(tt.raw, now)
			require.Equal(t, tt.want, got.Status)
			require.Equal(t, tt.want == Valid, IsValid(tt.raw, now))
		})
	}
}

func TestStatus_ErrAndString(t *testing.T) {
	t.Parallel()

	require.NoError(t, Valid.Err())
	require.True(t, errors.Is(Missing.Err(), ErrNoToken))
	require.True(t, errors.Is(Expired.Err(), ErrExpired))
	require.True(t, errors.Is(Malformed.Err(), ErrMalformed))

	require.Equal(t, "valid", Valid.String())
	require.Equal(t, "malformed", Malformed.String())
	require.Equal(t, "status(9)", Status(9).String())
}

// Разбор не паникует на произвольных строках.
func TestInspect_NeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{".", "..", "...", "a..b", "\x00.\x00.\x00", seg("{}") + "." + seg("{}") + ".", "Bearer x.y.z"}
	for _, in := range inputs {
		require.NotPanics(t, func() { _ = Inspect(in, now) }, in)
	}
}
