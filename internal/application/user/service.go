// Package user provides the application layer for diner accounts
package user

import (
	"context"
	"errors"

	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/deliveria/api/internal/ports/outbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"go.uber.org/zap"
)

// Service implements inbound.UserService.
type Service struct {
	users  outbound.UserRepository
	logger *zap.Logger
}

var _ inbound.UserService = (*Service)(nil)

// NewService creates a new user service
func NewService(users outbound.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger.Named("user-service"),
	}
}

// Register creates an account, rejecting duplicate emails.
func (s *Service) Register(ctx context.Context, cmd inbound.RegisterUserCommand) (*inbound.UserDTO, error) {
	u, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password, cmd.DietaryRestrictions, cmd.Preferences)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, err := s.users.FindByEmail(ctx, u.Email())
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, apperrors.NewInternalError("failed to check email").WithCause(err)
	}
	if existing != nil {
		return nil, apperrors.NewAlreadyExistsError("Email já cadastrado").WithMetadata("email", u.Email())
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, apperrors.NewAlreadyExistsError("Email já cadastrado").WithMetadata("email", u.Email())
		}
		return nil, apperrors.NewInternalError("failed to create user").WithCause(err)
	}

	s.logger.Info("User registered", zap.Uint("user_id", u.ID()))
	return toDTO(u), nil
}

// GetUser loads an account by ID.
func (s *Service) GetUser(ctx context.Context, id uint) (*inbound.UserDTO, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(id)
		}
		return nil, apperrors.NewInternalError("failed to load user").WithCause(err)
	}
	return toDTO(u), nil
}

func toDTO(u *user.User) *inbound.UserDTO {
	restrictions := u.DietaryRestrictions()
	if restrictions == nil {
		restrictions = []string{}
	}
	return &inbound.UserDTO{
		ID:                  u.ID(),
		Email:               u.Email(),
		Name:                u.Name(),
		IsActive:            u.IsActive(),
		DietaryRestrictions: restrictions,
		Preferences:         u.Preferences(),
		CreatedAt:           u.CreatedAt(),
	}
}
