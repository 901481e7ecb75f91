package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type backfillSurveyRepository interface {
	ListMissingFileRef(ctx context.Context, limit int) ([]models.Survey, error)
	UpdateFileRef(ctx context.Context, id, ref string) error
}

type fileLocator interface {
	FindByName(ctx context.Context, name string) (string, error)
}

// BackfillService repairs survey rows whose stored-file reference was never
// recorded, by asking the file store for the name the intake app would have
// used.
type BackfillService struct {
	surveys      backfillSurveyRepository
	profiles     profileRepository
	files        fileLocator
	defaultLimit int
	logger       *zap.Logger
}

// NewBackfillService constructs a BackfillService.
func NewBackfillService(surveys backfillSurveyRepository, profiles profileRepository, files fileLocator, defaultLimit int, logger *zap.Logger) *BackfillService {
	if defaultLimit <= 0 {
		defaultLimit = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackfillService{
		surveys:      surveys,
		profiles:     profiles,
		files:        files,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Run scans up to limit rows missing a file reference and links the ones
// whose file can be located. Rows whose payload never recorded an upload
// path count as missing without a store lookup. The caller's admin role is
// re-checked against the database, not taken from the token.
func (s *BackfillService) Run(ctx context.Context, claims *models.JWTClaims, limit int) (*models.BackfillResult, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing identity")
	}

	profile, err := s.profiles.ProfileByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not authorized")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load authorization profile")
	}
	if profile.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "backfill requires the admin role")
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}

	surveys, err := s.surveys.ListMissingFileRef(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query surveys missing file ref")
	}

	result := &models.BackfillResult{}
	for _, survey := range surveys {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backfill cancelled: %w", err)
		}

		if survey.Payload.String("pdfPath") == "" {
			result.Missing++
			continue
		}

		name := DeriveEntryName(survey)
		ref, err := s.files.FindByName(ctx, name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "file store lookup failed")
		}
		if ref == "" {
			result.Missing++
			continue
		}

		if err := s.surveys.UpdateFileRef(ctx, survey.ID, ref); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist file ref")
		}
		s.logger.Info("backfilled survey file ref",
			zap.String("survey_id", survey.ID),
			zap.String("file_ref", ref))
		result.Updated++
	}

	return result, nil
}
