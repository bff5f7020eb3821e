package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{header: "bearer abc", want: "abc", ok: true},
		{header: "  Bearer   abc  ", want: "abc", ok: true},
		{header: "Bearer", ok: false},
		{header: "Bearer ", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := identity.BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWTAuthenticator(t *testing.T) {
	auth, err := identity.NewJWT(identity.JWTConfig{Secret: "top-secret", Issuer: "notes", Audience: "attachly"})
	require.NoError(t, err)

	token, err := auth.Issue("user-1", time.Hour)
	require.NoError(t, err)

	userID, err := auth.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTAuthenticator_SubjectFallback(t *testing.T) {
	auth, err := identity.NewJWT(identity.JWTConfig{Secret: "top-secret"})
	require.NoError(t, err)

	token := signHS256(t, "top-secret", jwt.MapClaims{
		"sub": "user-from-sub",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := auth.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-from-sub", userID)
}

func TestJWTAuthenticator_Rejects(t *testing.T) {
	auth, err := identity.NewJWT(identity.JWTConfig{Secret: "top-secret", Issuer: "notes"})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour).Unix()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rs256, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "u1", "iss": "notes", "exp": future}).SignedString(rsaKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: signHS256(t, "other-secret", jwt.MapClaims{"sub": "u1", "iss": "notes", "exp": future})},
		{name: "expired", token: signHS256(t, "top-secret", jwt.MapClaims{"sub": "u1", "iss": "notes", "exp": time.Now().Add(-time.Hour).Unix()})},
		{name: "no expiry", token: signHS256(t, "top-secret", jwt.MapClaims{"sub": "u1", "iss": "notes"})},
		{name: "wrong issuer", token: signHS256(t, "top-secret", jwt.MapClaims{"sub": "u1", "iss": "elsewhere", "exp": future})},
		{name: "no subject", token: signHS256(t, "top-secret", jwt.MapClaims{"iss": "notes", "exp": future})},
		{name: "rs256", token: rs256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Authenticate(context.Background(), tt.token)
			assert.ErrorIs(t, err, attachly.ErrUnauthorized)
		})
	}
}

func TestNewJWT_RequiresSecret(t *testing.T) {
	_, err := identity.NewJWT(identity.JWTConfig{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	auth, err := identity.New(context.Background(), identity.Config{Type: "jwt", JWT: identity.JWTConfig{Secret: "s"}})
	require.NoError(t, err)
	assert.IsType(t, &identity.JWTAuthenticator{}, auth)

	_, err = identity.New(context.Background(), identity.Config{Type: "ldap"})
	assert.ErrorContains(t, err, "unknown type")

	_, err = identity.New(context.Background(), identity.Config{Type: "oidc"})
	assert.ErrorContains(t, err, "either issuer or jwks_url")
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

type oidcProvider struct {
	server *httptest.Server
	key    *rsa.PrivateKey
}

func newOIDCProvider(t *testing.T) *oidcProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &oidcProvider{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                p.server.URL,
			"jwks_uri":                              p.server.URL + "/keys",
			"authorization_endpoint":                p.server.URL + "/auth",
			"token_endpoint":                        p.server.URL + "/token",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "test-key",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *oidcProvider) token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "test-key"
	signed, err := tok.SignedString(p.key)
	require.NoError(t, err)
	return signed
}

func TestOIDCAuthenticator_Discovery(t *testing.T) {
	p := newOIDCProvider(t)
	ctx := context.Background()

	auth, err := identity.NewOIDC(ctx, identity.OIDCConfig{Issuer: p.server.URL, ClientID: "notes-app"})
	require.NoError(t, err)

	valid := p.token(t, jwt.MapClaims{
		"iss": p.server.URL,
		"sub": "oidc-user",
		"aud": "notes-app",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	userID, err := auth.Authenticate(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "oidc-user", userID)

	wrongAud := p.token(t, jwt.MapClaims{
		"iss": p.server.URL,
		"sub": "oidc-user",
		"aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = auth.Authenticate(ctx, wrongAud)
	assert.ErrorIs(t, err, attachly.ErrUnauthorized)

	expired := p.token(t, jwt.MapClaims{
		"iss": p.server.URL,
		"sub": "oidc-user",
		"aud": "notes-app",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = auth.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, attachly.ErrUnauthorized)
}

func TestOIDCAuthenticator_JWKSURL(t *testing.T) {
	p := newOIDCProvider(t)
	ctx := context.Background()

	auth, err := identity.NewOIDC(ctx, identity.OIDCConfig{JWKSURL: p.server.URL + "/keys", Audience: "attachly"})
	require.NoError(t, err)

	token := p.token(t, jwt.MapClaims{
		"iss": "https://any-issuer.example.com",
		"sub": "jwks-user",
		"aud": []string{"attachly"},
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "jwks-user", userID)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "jwks-user",
		"aud": "attachly",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	forged.Header["kid"] = "test-key"
	forgedToken, err := forged.SignedString(otherKey)
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, forgedToken)
	assert.ErrorIs(t, err, attachly.ErrUnauthorized)
}
