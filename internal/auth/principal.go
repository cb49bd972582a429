package auth

// Role is the capability level of an authenticated user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated caller of a request.
// It is passed explicitly into every authorization check.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanActFor reports whether the principal may act on a record owned by ownerID.
func (p Principal) CanActFor(ownerID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.UserID != "" && p.UserID == ownerID
}
