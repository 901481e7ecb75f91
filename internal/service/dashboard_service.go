package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
	"github.com/clinsight/biomed-admin-api/pkg/export"
)

type dashboardSurveySource interface {
	List(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter) ([]models.Survey, error)
}

// DashboardService aggregates survey counts for the admin dashboard. The
// grouping used to run in the browser over the full result set; here it runs
// server-side and the result is cached per caller so a scoped user can never
// be served an elevated user's numbers.
type DashboardService struct {
	surveys  dashboardSurveySource
	cache    *CacheService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(surveys dashboardSurveySource, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		surveys:  surveys,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns grouped survey counts for the filter and period. The second
// return value reports whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter, period models.Period) (*models.DashboardSummary, bool, error) {
	if period == "" {
		period = models.PeriodMonthly
	}
	if !period.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown period %q", period))
	}

	key := s.cacheKey(claims, filter, period)
	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	surveys, err := s.surveys.List(ctx, claims, filter)
	if err != nil {
		return nil, false, err
	}

	summary := s.aggregate(surveys, filter, period)

	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, false, nil
}

// Report renders the summary as a downloadable CSV or PDF document. It
// returns the suggested filename, content type and body.
func (s *DashboardService) Report(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter, period models.Period, format string) (string, string, []byte, error) {
	summary, _, err := s.Summary(ctx, claims, filter, period)
	if err != nil {
		return "", "", nil, err
	}

	table := summaryTable(summary)
	stamp := s.now().UnixMilli()

	switch format {
	case "csv":
		body, err := s.csv.Render(table)
		if err != nil {
			return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return fmt.Sprintf("dashboard_%s_%d.csv", summary.Period, stamp), "text/csv", body, nil
	case "pdf":
		body, err := s.pdf.Render(table)
		if err != nil {
			return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return fmt.Sprintf("dashboard_%s_%d.pdf", summary.Period, stamp), "application/pdf", body, nil
	default:
		return "", "", nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

func (s *DashboardService) cacheKey(claims *models.JWTClaims, filter models.SurveyFilter, period models.Period) string {
	userID := ""
	if claims != nil {
		userID = claims.UserID
	}
	start, end := "-", "-"
	if filter.Start != nil {
		start = filter.Start.UTC().Format(time.RFC3339)
	}
	if filter.End != nil {
		end = filter.End.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("dashboard:summary:%s:%s:%s:%s:%s:%s", userID, filter.Kind, filter.Service, period, start, end)
}

func (s *DashboardService) aggregate(surveys []models.Survey, filter models.SurveyFilter, period models.Period) *models.DashboardSummary {
	byPeriod := map[string]int{}
	byService := map[string]int{}
	byOperator := map[string]int{}
	matrix := map[string]map[string]int{}

	for _, survey := range surveys {
		bucket := periodKey(survey.Date, period)
		byPeriod[bucket]++

		svc := survey.Service
		if svc == "" {
			svc = "sin_servicio"
		}
		byService[svc]++

		operator := "sin_operador"
		if survey.OperatorName != nil && *survey.OperatorName != "" {
			operator = *survey.OperatorName
		}
		byOperator[operator]++

		if matrix[svc] == nil {
			matrix[svc] = map[string]int{}
		}
		matrix[svc][bucket]++
	}

	return &models.DashboardSummary{
		Kind:             filter.Kind,
		Service:          filter.Service,
		Period:           period,
		Total:            len(surveys),
		CountsByPeriod:   sortedByKey(byPeriod),
		CountsByService:  sortedByCount(byService),
		CountsByOperator: sortedByCount(byOperator),
		ServicePeriods:   matrix,
	}
}

// periodKey buckets a timestamp into the dashboard's aggregation windows.
func periodKey(t time.Time, period models.Period) string {
	switch period {
	case models.PeriodQuarterly:
		return fmt.Sprintf("%d-T%d", t.Year(), (int(t.Month())-1)/3+1)
	case models.PeriodSemiannual:
		return fmt.Sprintf("%d-S%d", t.Year(), (int(t.Month())-1)/6+1)
	case models.PeriodAnnual:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

func sortedByKey(counts map[string]int) []models.KeyCount {
	out := make([]models.KeyCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, models.KeyCount{Key: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func sortedByCount(counts map[string]int) []models.KeyCount {
	out := make([]models.KeyCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, models.KeyCount{Key: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func summaryTable(summary *models.DashboardSummary) export.Table {
	table := export.Table{
		Title:   "Resumen de encuestas",
		Columns: []string{"Servicio", "Periodo", "Total"},
	}

	services := make([]string, 0, len(summary.ServicePeriods))
	for svc := range summary.ServicePeriods {
		services = append(services, svc)
	}
	sort.Strings(services)

	for _, svc := range services {
		buckets := summary.ServicePeriods[svc]
		keys := make([]string, 0, len(buckets))
		for key := range buckets {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			table.Rows = append(table.Rows, []string{svc, key, strconv.Itoa(buckets[key])})
		}
	}
	return table
}
