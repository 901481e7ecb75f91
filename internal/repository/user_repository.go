package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinsight/biomed-admin-api/internal/models"
)

const userColumns = "id, email, password_hash, full_name, role, servicio, active, last_login, created_at, updated_at"

// UserRepository persists staff accounts and refresh token sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail fetches a user row by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID fetches a user row by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ProfileByUserID loads the authorization profile: the role that drives the
// privileged/scoped query split plus the service the account belongs to.
func (r *UserRepository) ProfileByUserID(ctx context.Context, userID string) (*models.StaffProfile, error) {
	const query = "SELECT id, role, servicio FROM users WHERE id = $1 AND active"
	var profile models.StaffProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, fmt.Errorf("load staff profile: %w", err)
	}
	return &profile, nil
}

// UpdateLastLogin stamps the latest successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = "UPDATE users SET last_login = $1 WHERE id = $2"
	if _, err := r.db.ExecContext(ctx, query, ts, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateRefreshToken inserts a refresh token session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent)
VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken fetches a refresh token row by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
FROM refresh_tokens WHERE token = $1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &stored, nil
}

// RevokeRefreshToken marks a refresh token as revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = "UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE id = $2"
	if _, err := r.db.ExecContext(ctx, query, revokedAt, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every live session of a user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = "UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE user_id = $1 AND NOT revoked"
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}
