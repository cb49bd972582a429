package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/user"
)

// StoredPrincipal loads the user behind a token on every authenticated request.
// Missing and inactive users are rejected; the role comes from the user record.
func StoredPrincipal(userService user.Service) auth.PrincipalLoader {
	return func(ctx context.Context, userID string) (auth.Principal, error) {
		u, err := userService.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return auth.Principal{}, auth.ErrAccountUnavailable
			}
			return auth.Principal{}, err
		}

		if !u.IsActive {
			return auth.Principal{}, auth.ErrAccountUnavailable
		}
		return u.Principal(), nil
	}
}

// RequestLogger writes one structured log line per request.
// It replaces gin.Logger in production so access logs share the app's format.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if userID := auth.GetUserID(c); userID != "" {
			attrs = append(attrs, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.ErrorContext(c.Request.Context(), "request", attrs...)
		case status >= 400:
			log.WarnContext(c.Request.Context(), "request", attrs...)
		default:
			log.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}
