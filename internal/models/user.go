package models

import "time"

// User represents a user row. Role is stored as its string value.
type User struct {
	UserID       string `db:"user_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	AuditFields
	BlockedAt *time.Time `db:"blocked_at"`
}
