package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the auth endpoints, /me and the admin user endpoints.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)

	// === Authenticated Routes ===
	g.GET("/me", authMiddleware, h.Me)

	// === Admin Routes ===
	admin := g.Group("/users", authMiddleware, adminMiddleware)
	admin.GET("", h.List)
	admin.GET("/:id", h.Get)
	admin.PATCH("/:id", h.Update)
}
