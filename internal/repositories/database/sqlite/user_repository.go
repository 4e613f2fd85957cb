package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/models"
	"github.com/gestionale-jos/jos_backend/internal/utils/mapping"
)

type userRepository struct {
	BaseRepository
}

var _ portsrepo.UserRepositoryFacade = (*userRepository)(nil)

const userColumns = `user_id, username, name, email, password_hash, role, auth_provider, provider_user_id,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanUser(row rowScanner) (models.User, error) {
	var (
		m                              models.User
		email, hash, providerID, delAt sql.NullString
		createdAt, lastUpdatedAt       string
	)
	if err := row.Scan(
		&m.UserID,
		&m.Username,
		&m.Name,
		&email,
		&hash,
		&m.Role,
		&m.AuthProvider,
		&providerID,
		&createdAt,
		&m.CreatedBy,
		&lastUpdatedAt,
		&m.LastUpdatedBy,
		&delAt,
	); err != nil {
		return m, err
	}
	m.Email = nullString(email)
	m.PasswordHash = nullString(hash)
	m.ProviderUserID = nullString(providerID)
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	if m.LastUpdatedAt, err = parseTime(lastUpdatedAt); err != nil {
		return m, err
	}
	m.DeletedAt, err = parseTimePtr(delAt)
	return m, err
}

func (r *userRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO utenti (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		m.UserID,
		m.Username,
		m.Name,
		m.Email,
		m.PasswordHash,
		m.Role,
		m.AuthProvider,
		m.ProviderUserID,
		formatTime(m.CreatedAt),
		m.CreatedBy,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
		formatTimePtr(m.DeletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s", apperrors.ErrDuplicate, m.Username)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	m, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM utenti WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, `user_id = ?;`, userID)
}

func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `username = ?;`, username)
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `email IS NOT NULL AND email = ? COLLATE NOCASE;`, email)
}

func (r *userRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+`
		FROM utenti
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?;`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return mapping.ToDomainUserSlice(users), nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE utenti
		SET name = ?, email = ?, password_hash = ?, role = ?, provider_user_id = ?,
			last_updated_at = ?, last_updated_by = ?, deleted_at = ?
		WHERE user_id = ?;`,
		m.Name,
		m.Email,
		m.PasswordHash,
		m.Role,
		m.ProviderUserID,
		formatTime(m.LastUpdatedAt),
		m.LastUpdatedBy,
		formatTimePtr(m.DeletedAt),
		m.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to execute update user query: %w", err)
	}
	return expectRow(res, "user "+m.UserID)
}
