package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/appointy/booking-api/internal/handler"
	"github.com/appointy/booking-api/pkg/auth"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextEmail    = "email"
	ContextName     = "name"
	ContextRole     = "role"
	ContextPolicyID = "policy_id"
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
	// claims cache keyed by raw token; TTL stays well under token life so
	// a cached hit can never outlive the token itself.
	claims *gocache.Cache
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc: jwtSvc,
		claims: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Authenticate verifies the Bearer token and puts the caller's identity in
// the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}
		token := parts[1]

		var claims *auth.Claims
		if cached, ok := m.claims.Get(token); ok {
			claims = cached.(*auth.Claims)
		} else {
			parsed, err := m.jwtSvc.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
				c.Abort()
				return
			}
			claims = parsed
			m.claims.Set(token, claims, gocache.DefaultExpiration)
		}

		c.Set(ContextEmail, claims.Email)
		c.Set(ContextName, claims.Name)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextPolicyID, claims.PolicyID)
		c.Next()
	}
}

// RequireRole rejects callers whose token does not carry the given role.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
