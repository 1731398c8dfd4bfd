package services

import (
	"context"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/dto"
)

// UserSvcFacade covers user reference data and administration.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, actorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, actorUserID string) ([]domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorUserID string) (*domain.User, error)
}

// AuthSvcFacade authenticates credentials and issues tokens.
type AuthSvcFacade interface {
	// Login verifies the credentials and returns a signed token for the user.
	// Blocked users are rejected.
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
}
