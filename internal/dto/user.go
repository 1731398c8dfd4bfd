package dto

import (
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
)

// CreateUserRequest defines the data needed to create a user.
type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=user accountant admin"`
}

// UpdateUserRequest defines an edit to a user.
type UpdateUserRequest struct {
	Name     *string      `json:"name"`
	Password *string      `json:"password" binding:"omitempty,min=8"`
	Role     *domain.Role `json:"role" binding:"omitempty,oneof=user accountant admin"`
	Blocked  *bool        `json:"blocked"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID    string      `json:"userID"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	BlockedAt *time.Time  `json:"blockedAt,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LoginRequest carries the login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ToUserResponse converts a domain.User to its DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		BlockedAt: u.BlockedAt,
		CreatedAt: u.CreatedAt,
	}
}

// ToListUserResponse converts users to DTOs.
func ToListUserResponse(users []domain.User) []UserResponse {
	res := make([]UserResponse, len(users))
	for i := range users {
		res[i] = ToUserResponse(&users[i])
	}
	return res
}
