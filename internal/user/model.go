package user

import (
	"net/http"
	"time"

	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
)

// User represents a user in the system.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         auth.Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Principal returns the identity used for authorization checks.
func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email       string
	DisplayName string
	Role        auth.Role
	IsActive    *bool // nil means any

	Page      int
	PageSize  int
	SortBy    string // one of the sortable columns
	SortOrder string // ASC or DESC
}

// UpdateUserRequest holds the admin-editable fields. Nil fields are left unchanged.
type UpdateUserRequest struct {
	DisplayName *string
	Role        *auth.Role
	IsActive    *bool
}
