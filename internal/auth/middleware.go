package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrAccountUnavailable is returned by a PrincipalLoader for users that no
// longer exist or have been deactivated.
var ErrAccountUnavailable = errors.New("account unavailable")

// PrincipalLoader returns the principal currently stored for userID.
type PrincipalLoader func(ctx context.Context, userID string) (Principal, error)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>.
// When load is set the principal is read from it instead of the token claims,
// so role changes and deactivation apply to tokens already issued.
func AuthRequired(jwtManager *JWTManager, load PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}

		claims, err := jwtManager.ParseAndValidate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		p := claims.Principal()
		if load != nil {
			p, err = load(c.Request.Context(), claims.UserID)
			switch {
			case errors.Is(err, ErrAccountUnavailable):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or inactive"})
				return
			case err != nil:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
		}

		// Store the principal into Gin context for later handlers.
		SetPrincipal(c, p, claims.Email)

		c.Next()
	}
}

// RequireAdmin ensures the authenticated principal has the admin role.
// It MUST be used after AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}
		c.Next()
	}
}
