package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type mockSurveyRepo struct {
	surveys    []models.Survey
	services   []string
	lastFilter models.SurveyFilter
	lastScope  models.QueryScope
	lastKind   string
	err        error
}

func (m *mockSurveyRepo) List(ctx context.Context, filter models.SurveyFilter, scope models.QueryScope) ([]models.Survey, error) {
	m.lastFilter = filter
	m.lastScope = scope
	return m.surveys, m.err
}

func (m *mockSurveyRepo) DistinctServices(ctx context.Context, kind string, scope models.QueryScope) ([]string, error) {
	m.lastKind = kind
	m.lastScope = scope
	return m.services, m.err
}

type mockProfileRepo struct {
	profiles map[string]*models.StaffProfile
	err      error
}

func (m *mockProfileRepo) ProfileByUserID(ctx context.Context, userID string) (*models.StaffProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return profile, nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func staffClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}
}

func testProfiles() *mockProfileRepo {
	return &mockProfileRepo{profiles: map[string]*models.StaffProfile{
		"admin-1": {UserID: "admin-1", Role: models.RoleAdmin},
		"staff-1": {UserID: "staff-1", Role: models.RoleStaff, Service: "radiologia"},
	}}
}

func TestSurveyServiceResolveScopeAdmin(t *testing.T) {
	svc := NewSurveyService(&mockSurveyRepo{}, testProfiles(), zap.NewNop())

	scope, err := svc.ResolveScope(context.Background(), adminClaims())
	require.NoError(t, err)
	assert.True(t, scope.Elevated)
}

func TestSurveyServiceResolveScopeStaffPinnedToService(t *testing.T) {
	svc := NewSurveyService(&mockSurveyRepo{}, testProfiles(), zap.NewNop())

	scope, err := svc.ResolveScope(context.Background(), staffClaims())
	require.NoError(t, err)
	assert.False(t, scope.Elevated)
	assert.Equal(t, "radiologia", scope.Service)
}

func TestSurveyServiceResolveScopeUnknownAccount(t *testing.T) {
	// An admin claim in the token is worthless without a matching active row.
	svc := NewSurveyService(&mockSurveyRepo{}, &mockProfileRepo{profiles: map[string]*models.StaffProfile{}}, zap.NewNop())

	_, err := svc.ResolveScope(context.Background(), adminClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestSurveyServiceResolveScopeMissingIdentity(t *testing.T) {
	svc := NewSurveyService(&mockSurveyRepo{}, testProfiles(), zap.NewNop())

	_, err := svc.ResolveScope(context.Background(), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestSurveyServiceListAppliesScope(t *testing.T) {
	repo := &mockSurveyRepo{surveys: []models.Survey{{ID: "s1"}}}
	svc := NewSurveyService(repo, testProfiles(), zap.NewNop())

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := models.SurveyFilter{Kind: "satisfaccion", Service: "all", Start: &start}
	surveys, err := svc.List(context.Background(), staffClaims(), filter)
	require.NoError(t, err)
	assert.Len(t, surveys, 1)
	assert.Equal(t, filter, repo.lastFilter)
	assert.Equal(t, models.QueryScope{Service: "radiologia"}, repo.lastScope)
}

func TestSurveyServiceListEmptyResultIsNotAnError(t *testing.T) {
	svc := NewSurveyService(&mockSurveyRepo{}, testProfiles(), zap.NewNop())

	surveys, err := svc.List(context.Background(), adminClaims(), models.SurveyFilter{})
	require.NoError(t, err)
	assert.NotNil(t, surveys)
	assert.Empty(t, surveys)
}

func TestSurveyServiceServicesForwardsKind(t *testing.T) {
	repo := &mockSurveyRepo{services: []string{"mamografia", "radiologia"}}
	svc := NewSurveyService(repo, testProfiles(), zap.NewNop())

	services, err := svc.Services(context.Background(), adminClaims(), "satisfaccion")
	require.NoError(t, err)
	assert.Equal(t, []string{"mamografia", "radiologia"}, services)
	assert.Equal(t, "satisfaccion", repo.lastKind)
	assert.True(t, repo.lastScope.Elevated)
}
