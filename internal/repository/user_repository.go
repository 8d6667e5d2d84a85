package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, is_staff, is_active, last_login, date_joined`

// UserRepository provides database access for users, their groups and refresh tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns a user by username with groups loaded.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	return r.findOne(ctx, "find user by username", query, username)
}

// FindByID returns a user by identifier with groups loaded.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.findOne(ctx, "find user by id", query, id)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	groups, err := r.Groups(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Groups = groups
	return &user, nil
}

// Groups lists the group names of a user.
func (r *UserRepository) Groups(ctx context.Context, userID int64) ([]string, error) {
	const query = `SELECT g.name FROM auth_groups g JOIN user_groups ug ON ug.group_id = g.id WHERE ug.user_id = $1 ORDER BY g.name`
	groups := []string{}
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	return groups, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Upsert inserts a user or refreshes the profile of an existing username and sets user.ID.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (username, first_name, last_name, email, password_hash, is_staff, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			email = EXCLUDED.email, password_hash = EXCLUDED.password_hash, is_staff = EXCLUDED.is_staff, is_active = EXCLUDED.is_active
		RETURNING id`
	if err := r.db.GetContext(ctx, &user.ID, query, user.Username, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.IsStaff, user.IsActive); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// AddToGroup adds the user to a named group; unknown group names are ignored.
func (r *UserRepository) AddToGroup(ctx context.Context, userID int64, group string) error {
	const query = `INSERT INTO user_groups (user_id, group_id) SELECT $1, id FROM auth_groups WHERE name = $2 ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, group); err != nil {
		return fmt.Errorf("add user to group: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a refresh token record.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (user_id, jti, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &token.ID, query, token.UserID, token.JTI, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken retrieves a refresh token by jti.
func (r *UserRepository) FindRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, jti, expires_at, created_at, revoked, revoked_at FROM refresh_tokens WHERE jti = $1`
	var token models.RefreshToken
	if err := r.db.GetContext(ctx, &token, query, jti); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &token, nil
}

// RevokeRefreshToken marks a refresh token as revoked. It reports false when the token was
// already revoked, which lets rotation detect replays.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, jti string, revokedAt time.Time) (bool, error) {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE jti = $1 AND revoked = FALSE`
	res, err := r.db.ExecContext(ctx, query, jti, revokedAt)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return n == 1, nil
}

// CreateAuditLog persists an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	const query = `INSERT INTO audit_logs (user_id, action, resource, resource_id, new_values, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, log.UserID, log.Action, log.Resource, log.ResourceID, nullableJSON(log.NewValues), log.IPAddress, log.UserAgent); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
