package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/turismo-portal/internal/auth"
	"github.com/example/turismo-portal/internal/domain/user"
)

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService("test-secret-key-for-testing-purposes", 24*time.Hour)
}

func okHandler(captured **auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
			*captured = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

// ============================================
// Auth Middleware Tests
// ============================================

func TestAuth_ValidToken_Header(t *testing.T) {
	tokens := newTestTokenService()
	mw := Auth(tokens)

	token, _, err := tokens.Generate("user-123", "test@example.com", user.RoleCustomer)
	require.NoError(t, err)

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, capturedClaims)
	assert.Equal(t, "user-123", capturedClaims.UserID)
	assert.Equal(t, "test@example.com", capturedClaims.Email)
	assert.Equal(t, user.RoleCustomer, capturedClaims.Role)
}

func TestAuth_ValidToken_Cookie(t *testing.T) {
	tokens := newTestTokenService()
	mw := Auth(tokens)

	token, _, err := tokens.Generate("user-456", "cookie@example.com", user.RoleAdmin)
	require.NoError(t, err)

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, capturedClaims)
	assert.Equal(t, "user-456", capturedClaims.UserID)
}

func TestAuth_NoToken(t *testing.T) {
	mw := Auth(newTestTokenService())

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	assert.Nil(t, capturedClaims)
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(newTestTokenService())

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuth_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 1*time.Millisecond)
	mw := Auth(tokens)

	token, _, err := tokens.Generate("user-123", "test@example.com", user.RoleCustomer)
	require.NoError(t, err)

	// Wait for the token to expire
	time.Sleep(10 * time.Millisecond)

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_CookieTakesPrecedence(t *testing.T) {
	tokens := newTestTokenService()
	mw := Auth(tokens)

	cookieToken, _, _ := tokens.Generate("cookie-user", "cookie@example.com", user.RoleCustomer)
	headerToken, _, _ := tokens.Generate("header-user", "header@example.com", user.RoleAdmin)

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, capturedClaims)
	assert.Equal(t, "cookie-user", capturedClaims.UserID)
}

// ============================================
// Optional Auth Middleware Tests
// ============================================

func TestOptionalAuth_ValidToken(t *testing.T) {
	tokens := newTestTokenService()
	mw := OptionalAuth(tokens)

	token, _, _ := tokens.Generate("user-123", "test@example.com", user.RoleCustomer)

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, capturedClaims)
	assert.Equal(t, "user-123", capturedClaims.UserID)
}

func TestOptionalAuth_NoToken(t *testing.T) {
	mw := OptionalAuth(newTestTokenService())

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, capturedClaims)
}

func TestOptionalAuth_InvalidTokenIgnored(t *testing.T) {
	mw := OptionalAuth(newTestTokenService())

	var capturedClaims *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, capturedClaims)
}

// ============================================
// RequireRole Tests
// ============================================

func requestWithClaims(role user.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	claims := &auth.Claims{UserID: "user-1", Email: "u@example.com", Role: role}
	return req.WithContext(context.WithValue(req.Context(), UserContextKey, claims))
}

func TestRequireRole_Allowed(t *testing.T) {
	mw := RequireRole(user.RoleAdmin, user.RoleSales)

	for _, role := range []user.Role{user.RoleAdmin, user.RoleSales} {
		rec := httptest.NewRecorder()
		var capturedClaims *auth.Claims
		mw(okHandler(&capturedClaims)).ServeHTTP(rec, requestWithClaims(role))
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", role)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	mw := RequireRole(user.RoleAdmin)

	rec := httptest.NewRecorder()
	var capturedClaims *auth.Claims
	mw(okHandler(&capturedClaims)).ServeHTTP(rec, requestWithClaims(user.RoleCustomer))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestRequireRole_NoClaims(t *testing.T) {
	mw := RequireRole(user.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	var capturedClaims *auth.Claims
	mw(okHandler(&capturedClaims)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Cart Session Tests
// ============================================

func TestCartSession_IssuesCookieWhenMissing(t *testing.T) {
	var capturedSession string
	handler := CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedSession = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, capturedSession)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
	assert.Equal(t, capturedSession, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartSession_ReusesExistingCookie(t *testing.T) {
	var capturedSession string
	handler := CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedSession = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "existing-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "existing-session", capturedSession)
	assert.Empty(t, rec.Result().Cookies())
}
