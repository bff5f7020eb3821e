package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	attachlyhttp "github.com/sagarc03/attachly/http"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware_SetsUserID(t *testing.T) {
	var gotUserID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = attachlyhttp.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := attachlyhttp.AuthMiddleware(MockAuthenticator{"tok": "user-42"})(handler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", gotUserID)
}

func TestAuthMiddleware_RejectsInvalidToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrapped := attachlyhttp.AuthMiddleware(MockAuthenticator{"tok": "user-42"})(handler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer other")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuthMiddleware_OptionsBypass(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := attachlyhttp.UserIDFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	wrapped := attachlyhttp.AuthMiddleware(MockAuthenticator{})(handler)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
