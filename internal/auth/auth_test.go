package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-crm/internal/model"
)

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuerRejectsBadConfig(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenIssuer("s", 0)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := newIssuer(t)

	raw, err := issuer.Issue(&model.User{ID: 7, Email: "op@example.com", Name: "Op"})
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.ID)
	assert.Equal(t, "op@example.com", claims.Email)
	assert.Equal(t, "Op", claims.Name)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenExpires(t *testing.T) {
	issuer := newIssuer(t)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	raw, err := issuer.Issue(&model.User{ID: 1})
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	issuer := newIssuer(t)

	other, err := NewTokenIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	raw, err := other.Issue(&model.User{ID: 1})
	require.NoError(t, err)

	_, err = issuer.Parse(raw)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	issuer := newIssuer(t)
	valid, err := issuer.Issue(&model.User{ID: 3, Name: "Op"})
	require.NoError(t, err)

	var seen *Claims
	h := Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token abc", want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer not-a-jwt", want: http.StatusForbidden},
		{name: "valid", header: "Bearer " + valid, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, 3, seen.ID)
			} else {
				assert.Nil(t, seen)
				assert.Contains(t, w.Body.String(), "error")
			}
		})
	}
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestStaticVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	v := NewStaticVerifier(GoogleIssuer, "client-1", keys)
	ctx := context.Background()

	now := time.Now()
	good := signIDToken(t, key, jwt.MapClaims{
		"iss":     GoogleIssuer,
		"aud":     "client-1",
		"sub":     "google-123",
		"email":   "op@example.com",
		"name":    "Op",
		"picture": "https://example.com/p.png",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})

	id, err := v.Verify(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, "google-123", id.Subject)
	assert.Equal(t, "op@example.com", id.Email)
	assert.Equal(t, "Op", id.Name)

	wrongAudience := signIDToken(t, key, jwt.MapClaims{
		"iss": GoogleIssuer,
		"aud": "someone-else",
		"sub": "google-123",
		"exp": now.Add(time.Hour).Unix(),
	})
	_, err = v.Verify(ctx, wrongAudience)
	assert.Error(t, err)

	expired := signIDToken(t, key, jwt.MapClaims{
		"iss": GoogleIssuer,
		"aud": "client-1",
		"sub": "google-123",
		"exp": now.Add(-time.Hour).Unix(),
	})
	_, err = v.Verify(ctx, expired)
	assert.Error(t, err)

	_, err = v.Verify(ctx, "garbage")
	assert.Error(t, err)
}
