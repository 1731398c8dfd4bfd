package domain

import "time"

// User represents an actor in the payment-request workflow.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	AuditFields
	BlockedAt *time.Time `json:"blockedAt,omitempty"`
}

// IsBlocked reports whether the user has been locked out of the system.
func (u *User) IsBlocked() bool {
	return u.BlockedAt != nil
}
