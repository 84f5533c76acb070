package model

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleReception Role = "RECEPTION"
	RoleClinician Role = "CLINICIAN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReception, RoleClinician:
		return true
	}
	return false
}

// User represents a system user
type User struct {
	Base
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
}

// ClinicianSummary is the reduced clinician shape embedded in appointment
// responses and returned by the clinician listing.
type ClinicianSummary struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// RegisterRequest represents user registration parameters
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"required,oneof=ADMIN RECEPTION CLINICIAN"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the public shape of a newly created user.
type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
