package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/getfittoday/getfit-backend/internal/api"
	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/booking"
	"github.com/getfittoday/getfit-backend/internal/resource"
	"github.com/getfittoday/getfit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	Hours        booking.BusinessHours
	Logger       *slog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, log.With("module", "user"))

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo)

	// Booking Module
	bookingService := booking.NewService(booking.Deps{
		Repo:       booking.NewPgxRepository(cfg.DBPool),
		Resources:  resRepo,
		Transactor: booking.NewPgxTransactor(cfg.DBPool),
		Hours:      cfg.Hours,
		Logger:     log.With("module", "booking"),
	})

	// API Router Config
	routerParams := api.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		BusinessLocation: cfg.Hours.Location,
		Logger:           log.With("module", "http"),
		UserService:      userService,
		ResService:       resService,
		BookingService:   bookingService,
		JWTManager:       jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
