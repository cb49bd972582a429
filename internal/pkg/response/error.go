package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/getfittoday/getfit-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DetailResponse is the error shape used by the booking endpoints.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// If it's not an AppError, it defaults to 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// Detail is like Error but renders {"detail": ...}.
// fallback is used as the message for errors that are not AppErrors.
func Detail(c *gin.Context, err error, fallback string) {
	if appErr, ok := apperror.As(err); ok {
		c.JSON(appErr.Code, DetailResponse{Detail: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, DetailResponse{Detail: fallback})
}
