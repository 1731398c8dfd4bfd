package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
	"github.com/paydesk/paydesk_backend/internal/core/domain"
	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/paydesk/paydesk_backend/internal/utils"
)

// userServiceImpl implements the UserSvcFacade interface
type userServiceImpl struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	clock    platform.Clock
}

// NewUserServiceImpl creates the user administration service.
func NewUserServiceImpl(userRepo portsrepo.UserRepositoryFacade, clock platform.Clock) portssvc.UserSvcFacade {
	return &userServiceImpl{userRepo: userRepo, clock: clock}
}

var _ portssvc.UserSvcFacade = (*userServiceImpl)(nil)

func (s *userServiceImpl) CreateUser(ctx context.Context, req dto.CreateUserRequest, actorUserID string) (*domain.User, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, apperrors.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.userRepo.FindUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already in use: %w", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("email", email))
		return nil, err
	}

	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userServiceImpl) ListUsers(ctx context.Context, actorUserID string) ([]domain.User, error) {
	if _, err := s.resolveActor(ctx, actorUserID); err != nil {
		return nil, err
	}
	return s.userRepo.ListUsers(ctx)
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorUserID string) (*domain.User, error) {
	actor, err := s.requireAdmin(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	upd := *user
	if req.Name != nil {
		upd.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			s.LogError(ctx, err, "Failed to hash password")
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		upd.PasswordHash = hash
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, apperrors.ErrValidation)
		}
		upd.Role = *req.Role
	}
	if req.Blocked != nil {
		if *req.Blocked {
			if upd.BlockedAt == nil {
				blockedAt := now
				upd.BlockedAt = &blockedAt
			}
		} else {
			upd.BlockedAt = nil
		}
	}
	upd.LastUpdatedAt = now
	upd.LastUpdatedBy = actor.UserID

	if err := s.userRepo.UpdateUser(ctx, upd); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, err
	}
	return &upd, nil
}

func (s *userServiceImpl) resolveActor(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor.IsBlocked() {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

func (s *userServiceImpl) requireAdmin(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.resolveActor(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

// authServiceImpl implements the AuthSvcFacade interface
type authServiceImpl struct {
	BaseService
	userRepo    portsrepo.UserReader
	jwtSecret   string
	jwtExpiry   time.Duration
	tokenIssuer string
}

// NewAuthServiceImpl creates the credential authentication service.
func NewAuthServiceImpl(userRepo portsrepo.UserReader, jwtSecret string, jwtExpiry time.Duration, tokenIssuer string) portssvc.AuthSvcFacade {
	return &authServiceImpl{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		jwtExpiry:   jwtExpiry,
		tokenIssuer: tokenIssuer,
	}
}

var _ portssvc.AuthSvcFacade = (*authServiceImpl)(nil)

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Credential probes get the same answer whether the user exists or not.
		return nil, apperrors.ErrForbidden
	}
	if user.IsBlocked() || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrForbidden
	}

	token, err := utils.GenerateJWT(user.UserID, s.jwtSecret, s.jwtExpiry, s.tokenIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign token", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.LoginResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	}, nil
}
