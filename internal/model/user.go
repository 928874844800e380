package model

import "time"

// Roles recognized by the service. The core only ever compares these for
// equality; how identity is established is the concern of the auth layer.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents an application user record as stored in the `users`
// table. Handlers define separate response types with JSON tags; this
// struct is used by the repository layer and never leaves the server.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string // bcrypt
	FullName     string
	Role         string // ADMIN or CUSTOMER
	IsActive     bool   // inactive users are excluded from broadcast notifications
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string // SHA-256 hex digest of the token value
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while the token is still active
	CreatedAt time.Time
}
