package services

import (
	"context"
	"log/slog"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	RoleAuthorizer portssvc.UserRoleAuthorizerSvc
	Events         portssvc.EventPublisher
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// AuthorizeUser checks if a user has the required role
func (s *BaseService) AuthorizeUser(ctx context.Context, userID string, requiredRole domain.UserRole) error {
	if s.RoleAuthorizer != nil {
		return s.RoleAuthorizer.AuthorizeUserRole(ctx, userID, requiredRole)
	}
	s.LogDebug(ctx, "No role authorizer provided, access granted by default",
		slog.String("user_id", userID),
		slog.String("required_role", string(requiredRole)))
	return nil
}

// Emit publishes a change event when a publisher is configured.
func (s *BaseService) Emit(ctx context.Context, table string, action domain.ChangeAction, key, date string, payload any) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, domain.NewChangeEvent(table, action, key, date, payload))
}
