package model

import "time"

// Identity is the authenticated caller threaded through the call chain.
// It is populated by the access guard and never mutated downstream.
type Identity struct {
	UserID int64
	Role   Role
}

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	TokenID   string
	UserID    int64
	Role      Role
	ExpiresAt time.Time
}
