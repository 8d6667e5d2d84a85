package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	refreshTokens    map[string]*models.RefreshToken
	createRefreshErr error
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	repo := &mockAuthRepo{users: make(map[string]*models.User), refreshTokens: make(map[string]*models.RefreshToken)}
	for _, u := range users {
		repo.users[u.Username] = u
	}
	return repo
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	m.refreshTokens[token.JTI] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[jti]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, jti string, revokedAt time.Time) (bool, error) {
	rt, ok := m.refreshTokens[jti]
	if !ok || rt.Revoked {
		return false, nil
	}
	rt.Revoked = true
	rt.RevokedAt = &revokedAt
	return true, nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: 24 * time.Hour})
}

func testUser(t *testing.T, password string, groups ...string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: 7, Username: "alice", PasswordHash: string(hash), IsActive: true, Groups: groups}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo(testUser(t, "pw123", models.GroupStudents))
	svc := newTestAuthService(repo)

	pair, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.True(t, repo.lastLoginUpdated)
	assert.Len(t, repo.refreshTokens, 1)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, []string{models.GroupStudents}, claims.Groups)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	user := testUser(t, "pw123")
	repo := newMockAuthRepo(user)
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "bob", Password: "pw123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	user.IsActive = false
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "password")
}

func TestAuthServiceRefreshRotatesOnce(t *testing.T) {
	repo := newMockAuthRepo(testUser(t, "pw123", models.GroupTeachers))
	svc := newTestAuthService(repo)

	pair, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{Refresh: pair.Refresh})
	require.Error(t, err)
	assert.Equal(t, "token_not_valid", appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	repo := newMockAuthRepo(testUser(t, "pw123"))
	svc := newTestAuthService(repo)

	pair, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{Refresh: pair.Access})
	require.Error(t, err)
	_, err = svc.ValidateToken(pair.Refresh)
	require.Error(t, err)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	repo := newMockAuthRepo(testUser(t, "pw123"))
	svc := newTestAuthService(repo)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(pair.Access)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := newMockAuthRepo(testUser(t, "pw123"))
	svc := newTestAuthService(repo)

	pair, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(pair.Access)
	require.NoError(t, err)

	err = svc.Logout(context.Background(), pair.Refresh, &models.JWTClaims{UserID: 99}, RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.Logout(context.Background(), pair.Refresh, claims, RequestMeta{IP: "127.0.0.1"}))
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{Refresh: pair.Refresh})
	require.Error(t, err)
}
