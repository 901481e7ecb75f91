package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/clinsight/biomed-admin-api/internal/models"
)

const surveyColumns = "id, tipo, servicio, fecha, operator_name, payload, pdf_drive_path"

// SurveyRepository exposes read queries over the encuestas table plus the
// single mutation used by the backfill job.
type SurveyRepository struct {
	db *sqlx.DB
}

// NewSurveyRepository constructs the repository.
func NewSurveyRepository(db *sqlx.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// List returns surveys matching the filter inside the given scope, newest
// first. Rows sharing a fecha fall back to id so repeated calls over an
// unchanged dataset return the same order.
func (r *SurveyRepository) List(ctx context.Context, filter models.SurveyFilter, scope models.QueryScope) ([]models.Survey, error) {
	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(surveyColumns)
	builder.WriteString(" FROM encuestas WHERE 1=1")
	var args []interface{}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		builder.WriteString(fmt.Sprintf(" AND tipo = $%d", len(args)))
	}
	if filter.ServiceConstrained() {
		args = append(args, filter.Service)
		builder.WriteString(fmt.Sprintf(" AND servicio = $%d", len(args)))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		builder.WriteString(fmt.Sprintf(" AND fecha >= $%d", len(args)))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		builder.WriteString(fmt.Sprintf(" AND fecha <= $%d", len(args)))
	}
	if !scope.Elevated {
		args = append(args, scope.Service)
		builder.WriteString(fmt.Sprintf(" AND servicio = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY fecha DESC, id DESC")

	var surveys []models.Survey
	if err := r.db.SelectContext(ctx, &surveys, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	return surveys, nil
}

// DistinctServices returns the sorted set of non-empty servicio values,
// optionally narrowed by kind, inside the given scope.
func (r *SurveyRepository) DistinctServices(ctx context.Context, kind string, scope models.QueryScope) ([]string, error) {
	var builder strings.Builder
	builder.WriteString("SELECT DISTINCT servicio FROM encuestas WHERE servicio IS NOT NULL AND servicio <> ''")
	var args []interface{}

	if kind != "" {
		args = append(args, kind)
		builder.WriteString(fmt.Sprintf(" AND tipo = $%d", len(args)))
	}
	if !scope.Elevated {
		args = append(args, scope.Service)
		builder.WriteString(fmt.Sprintf(" AND servicio = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY servicio ASC")

	var services []string
	if err := r.db.SelectContext(ctx, &services, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query distinct services: %w", err)
	}
	return services, nil
}

// ListMissingFileRef fetches surveys that have no stored-file reference yet.
func (r *SurveyRepository) ListMissingFileRef(ctx context.Context, limit int) ([]models.Survey, error) {
	if limit <= 0 {
		limit = 200
	}
	query := "SELECT " + surveyColumns + " FROM encuestas WHERE pdf_drive_path IS NULL ORDER BY fecha DESC, id DESC LIMIT $1"
	var surveys []models.Survey
	if err := r.db.SelectContext(ctx, &surveys, query, limit); err != nil {
		return nil, fmt.Errorf("query surveys missing file ref: %w", err)
	}
	return surveys, nil
}

// UpdateFileRef stores a located file reference on a survey row.
func (r *SurveyRepository) UpdateFileRef(ctx context.Context, id, ref string) error {
	const query = "UPDATE encuestas SET pdf_drive_path = $1 WHERE id = $2"
	if _, err := r.db.ExecContext(ctx, query, ref, id); err != nil {
		return fmt.Errorf("update survey file ref: %w", err)
	}
	return nil
}
