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

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func newAuthServiceForTest(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "biomed-admin-api",
	})
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "admin@clinsight.co",
		PasswordHash: string(hash),
		FullName:     "Admin User",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := newAuthServiceForTest(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@clinsight.co",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@clinsight.co",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@clinsight.co",
		Password: "whatever",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	repo := &mockAuthRepo{userByEmail: user}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@clinsight.co",
		Password: "correct-password",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := newAuthServiceForTest(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@clinsight.co",
		Password: "correct-password",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token was revoked and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	repo := &mockAuthRepo{
		userByEmail: activeUser(t),
		refreshTokens: map[string]*models.RefreshToken{
			"stale": {
				ID:        "rt-1",
				UserID:    "user-1",
				Token:     "stale",
				ExpiresAt: time.Now().UTC().Add(-time.Minute),
			},
		},
	}
	svc := newAuthServiceForTest(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := &mockAuthRepo{
		refreshTokens: map[string]*models.RefreshToken{
			"owned-by-other": {
				ID:        "rt-2",
				UserID:    "user-2",
				Token:     "owned-by-other",
				ExpiresAt: time.Now().UTC().Add(time.Hour),
			},
		},
	}
	svc := newAuthServiceForTest(repo)

	err := svc.Logout(context.Background(), "owned-by-other", "user-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := newAuthServiceForTest(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@clinsight.co",
		Password: "correct-password",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(login.AccessToken + "x")
	require.Error(t, err)

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
