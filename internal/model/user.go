package model

import "time"

// User represents a row in the `users` table. These structs are used
// internally by the repository layer; handlers define separate response
// types with JSON tags. Donor profile fields (Name, Phone, BloodType) are
// optional for admin accounts.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role, DONOR or ADMIN
	Name         string    // users.name
	Phone        string    // users.phone
	BloodType    string    // users.blood_type
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models a row in the `refresh_tokens` table. The plain token
// is never stored, only its SHA-256 hex digest.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
