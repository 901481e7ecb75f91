package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type surveyRepository interface {
	List(ctx context.Context, filter models.SurveyFilter, scope models.QueryScope) ([]models.Survey, error)
	DistinctServices(ctx context.Context, kind string, scope models.QueryScope) ([]string, error)
}

type profileRepository interface {
	ProfileByUserID(ctx context.Context, userID string) (*models.StaffProfile, error)
}

// SurveyService answers survey listing queries within the caller's scope.
type SurveyService struct {
	surveys  surveyRepository
	profiles profileRepository
	logger   *zap.Logger
}

// NewSurveyService constructs a SurveyService.
func NewSurveyService(surveys surveyRepository, profiles profileRepository, logger *zap.Logger) *SurveyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SurveyService{surveys: surveys, profiles: profiles, logger: logger}
}

// ResolveScope turns authenticated claims into a query scope. The role is
// re-read from the database on every call; token claims alone never grant
// elevated access.
func (s *SurveyService) ResolveScope(ctx context.Context, claims *models.JWTClaims) (models.QueryScope, error) {
	if claims == nil || claims.UserID == "" {
		return models.QueryScope{}, appErrors.Clone(appErrors.ErrUnauthorized, "missing identity")
	}

	profile, err := s.profiles.ProfileByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueryScope{}, appErrors.Clone(appErrors.ErrForbidden, "account is not authorized")
		}
		return models.QueryScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load authorization profile")
	}

	if profile.Role == models.RoleAdmin {
		return models.QueryScope{Elevated: true}, nil
	}
	return models.QueryScope{Service: profile.Service}, nil
}

// List returns surveys matching the filter, narrowed to the caller's scope.
func (s *SurveyService) List(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter) ([]models.Survey, error) {
	scope, err := s.ResolveScope(ctx, claims)
	if err != nil {
		return nil, err
	}

	surveys, err := s.surveys.List(ctx, filter, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query surveys")
	}
	if surveys == nil {
		surveys = []models.Survey{}
	}
	return surveys, nil
}

// Services returns the distinct non-empty service names visible to the caller,
// optionally narrowed by survey kind.
func (s *SurveyService) Services(ctx context.Context, claims *models.JWTClaims, kind string) ([]string, error) {
	scope, err := s.ResolveScope(ctx, claims)
	if err != nil {
		return nil, err
	}

	services, err := s.surveys.DistinctServices(ctx, kind, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query services")
	}
	if services == nil {
		services = []string{}
	}
	return services, nil
}
