package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getfittoday/getfit-backend/internal/app"
	"github.com/getfittoday/getfit-backend/internal/booking"
	"github.com/getfittoday/getfit-backend/internal/config"
	"github.com/getfittoday/getfit-backend/internal/db"
	"github.com/getfittoday/getfit-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	hours, err := booking.NewBusinessHours(cfg.Booking.Location, cfg.Booking.OpenTime, cfg.Booking.CloseTime, cfg.Booking.SlotStep)
	if err != nil {
		log.Fatalf("invalid business hours: %v", err)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	})
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("failed to migrate db: %v", err)
		}
		logg.Info("database schema applied")
	}

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Hours:        hours,
		Logger:       logg,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logg.Info("server running", "addr", cfg.HTTPAddr,
			"timezone", hours.Location.String(), "slot_step", hours.SlotStep)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logg.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", "error", err)
	}

	logg.Info("server exited gracefully")
}
