package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/booking"
	bookingHttp "github.com/getfittoday/getfit-backend/internal/booking/http"
	"github.com/getfittoday/getfit-backend/internal/resource"
	resHttp "github.com/getfittoday/getfit-backend/internal/resource/http"
	"github.com/getfittoday/getfit-backend/internal/user"
	userHttp "github.com/getfittoday/getfit-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	// BusinessLocation is the time zone booking times are rendered in.
	BusinessLocation *time.Location
	Logger           *slog.Logger

	UserService    user.Service
	ResService     resource.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	if cfg.IsProduction && cfg.Logger != nil {
		r.Use(RequestLogger(cfg.Logger))
	} else {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates the JWT and loads the caller's stored role and state.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, StoredPrincipal(cfg.UserService))
	// adminMiddleware: Further checks if the authenticated user has the admin role.
	adminMiddleware := auth.RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	resHandler := resHttp.NewHandler(cfg.ResService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.BusinessLocation)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		resHttp.RegisterRoutes(v1, resHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}

// allowedOrigins returns the comma separated PROD_ORIGINS in production and
// local development origins otherwise.
func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
