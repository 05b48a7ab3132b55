package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/api/middleware"
	"github.com/saferoute/saferoute/internal/auth"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.saferoute.app",
		Audience:   "saferoute-api",
	})
}

func authRequest(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/reports", http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuth_RejectsBadHeaders(t *testing.T) {
	handler := middleware.Auth(testJWTService())(okHandler())

	tests := []struct {
		name       string
		header     string
		wantDetail string
	}{
		{"no header", "", "missing authorization header"},
		{"no bearer prefix", "token123", "invalid authorization header format"},
		{"basic auth", "Basic dXNlcjpwYXNz", "invalid authorization header format"},
		{"just bearer", "Bearer", "invalid authorization header format"},
		{"empty bearer", "Bearer ", "missing bearer token"},
		{"garbage token", "Bearer invalid.jwt.token", "invalid access token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := authRequest(handler, tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantDetail)
		})
	}
}

func TestAuth_ValidToken(t *testing.T) {
	jwtService := testJWTService()

	token, _, err := jwtService.GenerateAccessToken("usr_testuser123")
	require.NoError(t, err)

	var gotUserID string
	handler := middleware.Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := authRequest(handler, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "usr_testuser123", gotUserID)
}

func TestAuth_BearerSchemeIsCaseInsensitive(t *testing.T) {
	jwtService := testJWTService()
	handler := middleware.Auth(jwtService)(okHandler())

	token, _, err := jwtService.GenerateAccessToken("usr_testuser123")
	require.NoError(t, err)

	for _, prefix := range []string{"Bearer ", "bearer ", "BEARER "} {
		t.Run(prefix, func(t *testing.T) {
			rec := authRequest(handler, prefix+token)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/safety/score", http.NoBody)
	assert.Empty(t, middleware.GetUserID(req.Context()))
}
