package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointy/booking-api/pkg/auth"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	m := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	protected := r.Group("/", m.Authenticate())
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email":     c.GetString(ContextEmail),
			"role":      c.GetString(ContextRole),
			"policy_id": c.GetString(ContextPolicyID),
		})
	})
	protected.GET("/provider-only", m.RequireRole("Provider"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, jwtSvc
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	r, _ := setupAuthRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	r, jwtSvc := setupAuthRouter(t)

	token, err := jwtSvc.GenerateToken("doc@example.com", "Doc", "Provider", "policy-123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "doc@example.com")
	assert.Contains(t, w.Body.String(), "policy-123")

	// Second request hits the claims cache, same result.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	r, jwtSvc := setupAuthRouter(t)

	providerToken, err := jwtSvc.GenerateToken("doc@example.com", "Doc", "Provider", "p1")
	require.NoError(t, err)
	recipientToken, err := jwtSvc.GenerateToken("pat@example.com", "Pat", "Recipient", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/provider-only", nil)
	req.Header.Set("Authorization", "Bearer "+providerToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/provider-only", nil)
	req.Header.Set("Authorization", "Bearer "+recipientToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
