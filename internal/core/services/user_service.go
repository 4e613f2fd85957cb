package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/utils"
	"github.com/google/uuid"
)

// userService implements the UserSvcFacade interface
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	svc := &userService{userRepo: userRepo}
	// The service authorizes against its own user store.
	svc.RoleAuthorizer = svc
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser creates a local account. Without a creator (CLI bootstrap) no authorization is
// checked; the very first account is always made admin.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	if creatorUserID != "" {
		if err := s.AuthorizeUser(ctx, creatorUserID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to create users", slog.String("user_id", creatorUserID))
			return nil, err
		}
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: username and name are required", apperrors.ErrValidation)
	}
	if len(req.Password) < utils.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	_, err := s.userRepo.FindUserByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("%w: username %q is taken", apperrors.ErrDuplicate, username)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check username", slog.String("username", username))
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleOperator
	}
	existing, err := s.userRepo.FindUsers(ctx, 1, 0)
	if err != nil {
		s.LogError(ctx, err, "Failed to count users")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if len(existing) == 0 {
		role = domain.RoleAdmin
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	createdBy := creatorUserID
	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Email:        trimmed(req.Email),
		PasswordHash: &hash,
		Role:         role,
		AuthProvider: domain.ProviderLocal,
	}
	if createdBy == "" {
		createdBy = user.UserID
	}
	user.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     createdBy,
		LastUpdatedAt: now,
		LastUpdatedBy: createdBy,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		return nil, fmt.Errorf("failed to create user in service: %w", err)
	}

	s.LogInfo(ctx, "User created",
		slog.String("user_id", user.UserID),
		slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by username", slog.String("username", username))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users",
			slog.Int("limit", limit),
			slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	if userID != updaterUserID || req.Role != nil {
		if err := s.AuthorizeUser(ctx, updaterUserID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to update user",
				slog.String("user_id", updaterUserID),
				slog.String("target_user_id", userID))
			return nil, err
		}
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
		}
		if name != user.Name {
			user.Name = name
			changed = true
		}
	}
	if req.Email != nil {
		email := trimmed(req.Email)
		if (email == nil) != (user.Email == nil) || (email != nil && *email != *user.Email) {
			user.Email = email
			changed = true
		}
	}
	if req.Role != nil && *req.Role != user.Role {
		user.Role = *req.Role
		changed = true
	}
	if !changed {
		return user, nil
	}

	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = updaterUserID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.LogInfo(ctx, "User updated", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) LinkGoogleUser(ctx context.Context, email, providerUserID string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: google account has no email", apperrors.ErrUnauthorized)
	}
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogInfo(ctx, "Google sign-in for unregistered email", slog.String("email", email))
			return nil, fmt.Errorf("%w: no account registered for %s", apperrors.ErrForbidden, email)
		}
		s.LogError(ctx, err, "Failed to find user by email", slog.String("email", email))
		return nil, err
	}
	if user.DeletedAt != nil {
		return nil, fmt.Errorf("%w: account disabled", apperrors.ErrForbidden)
	}
	if user.ProviderUserID != nil && *user.ProviderUserID != providerUserID {
		s.LogError(ctx, apperrors.ErrUnauthorized, "Google account mismatch", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: email linked to another google account", apperrors.ErrUnauthorized)
	}
	if user.ProviderUserID == nil {
		user.ProviderUserID = &providerUserID
		user.LastUpdatedAt = time.Now().UTC()
		user.LastUpdatedBy = user.UserID
		if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
			s.LogError(ctx, err, "Failed to link google account", slog.String("user_id", user.UserID))
			return nil, err
		}
		s.LogInfo(ctx, "Google account linked", slog.String("user_id", user.UserID))
	}
	return user, nil
}

// AuthenticateUser checks a username/password pair. Every failure is reported as ErrUnauthorized.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if user.DeletedAt != nil || user.PasswordHash == nil || !utils.CheckPasswordHash(password, *user.PasswordHash) {
		s.LogDebug(ctx, "Login rejected", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// AuthorizeUserRole returns ErrForbidden when userID lacks required.
func (s *userService) AuthorizeUserRole(ctx context.Context, userID string, required domain.UserRole) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUnauthorized
		}
		return fmt.Errorf("failed to authorize user: %w", err)
	}
	if user.DeletedAt != nil {
		return apperrors.ErrUnauthorized
	}
	if !user.Role.Satisfies(required) {
		return fmt.Errorf("%w: %s role required", apperrors.ErrForbidden, required)
	}
	return nil
}
