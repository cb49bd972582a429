package auth

import "github.com/gin-gonic/gin"

const (
	ctxKeyUserID    = "userID"
	ctxKeyUserEmail = "userEmail"
	ctxKeyRole      = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxKeyUserEmail)
}

// GetPrincipal returns the authenticated principal.
// ok is false when the request went through no auth middleware.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	userID := GetUserID(c)
	if userID == "" {
		return Principal{}, false
	}
	role := Role(c.GetString(ctxKeyRole))
	if !role.Valid() {
		role = RoleUser
	}
	return Principal{UserID: userID, Role: role}, true
}

// SetPrincipal stores the principal in the gin context.
func SetPrincipal(c *gin.Context, p Principal, email string) {
	c.Set(ctxKeyUserID, p.UserID)
	c.Set(ctxKeyUserEmail, email)
	c.Set(ctxKeyRole, string(p.Role))
}
