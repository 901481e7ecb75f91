package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{store: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = map[string][]byte{}
	return nil
}

func dashboardSurveys() []models.Survey {
	operator := "Laura"
	return []models.Survey{
		{ID: "s1", Service: "radiologia", Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), OperatorName: &operator},
		{ID: "s2", Service: "radiologia", Date: time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC), OperatorName: &operator},
		{ID: "s3", Service: "mamografia", Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func newDashboardServiceForTest(surveys []models.Survey) (*DashboardService, *memoryCacheRepo) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(surveySourceStub{surveys: surveys}, cache, time.Minute, zap.NewNop())
	return svc, repo
}

func TestDashboardSummaryAggregates(t *testing.T) {
	svc, _ := newDashboardServiceForTest(dashboardSurveys())

	summary, hit, err := svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodMonthly)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, summary.Total)

	assert.Equal(t, []models.KeyCount{
		{Key: "2025-01", Count: 1},
		{Key: "2025-02", Count: 1},
		{Key: "2025-07", Count: 1},
	}, summary.CountsByPeriod)

	assert.Equal(t, []models.KeyCount{
		{Key: "radiologia", Count: 2},
		{Key: "mamografia", Count: 1},
	}, summary.CountsByService)

	assert.Equal(t, []models.KeyCount{
		{Key: "Laura", Count: 2},
		{Key: "sin_operador", Count: 1},
	}, summary.CountsByOperator)

	assert.Equal(t, 1, summary.ServicePeriods["radiologia"]["2025-01"])
	assert.Equal(t, 1, summary.ServicePeriods["mamografia"]["2025-07"])
}

func TestDashboardSummaryPeriodBuckets(t *testing.T) {
	svc, _ := newDashboardServiceForTest(dashboardSurveys())

	summary, _, err := svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodQuarterly)
	require.NoError(t, err)
	assert.Equal(t, []models.KeyCount{
		{Key: "2025-T1", Count: 2},
		{Key: "2025-T3", Count: 1},
	}, summary.CountsByPeriod)

	summary, _, err = svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodSemiannual)
	require.NoError(t, err)
	assert.Equal(t, []models.KeyCount{
		{Key: "2025-S1", Count: 2},
		{Key: "2025-S2", Count: 1},
	}, summary.CountsByPeriod)

	summary, _, err = svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodAnnual)
	require.NoError(t, err)
	assert.Equal(t, []models.KeyCount{{Key: "2025", Count: 3}}, summary.CountsByPeriod)
}

func TestDashboardSummaryRejectsUnknownPeriod(t *testing.T) {
	svc, _ := newDashboardServiceForTest(nil)

	_, _, err := svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.Period("weekly"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDashboardSummaryCachesPerUser(t *testing.T) {
	svc, repo := newDashboardServiceForTest(dashboardSurveys())

	_, hit, err := svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodMonthly)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = svc.Summary(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodMonthly)
	require.NoError(t, err)
	assert.True(t, hit)

	// A different caller must never reuse another caller's cached numbers.
	_, hit, err = svc.Summary(context.Background(), staffClaims(), models.SurveyFilter{}, models.PeriodMonthly)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, repo.store, 2)
}

func TestDashboardReportFormats(t *testing.T) {
	svc, _ := newDashboardServiceForTest(dashboardSurveys())

	name, contentType, body, err := svc.Report(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodMonthly, "csv")
	require.NoError(t, err)
	assert.Contains(t, name, ".csv")
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(body), "radiologia")

	name, contentType, body, err = svc.Report(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodMonthly, "pdf")
	require.NoError(t, err)
	assert.Contains(t, name, ".pdf")
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, body)

	_, _, _, err = svc.Report(context.Background(), adminClaims(), models.SurveyFilter{}, models.PeriodMonthly, "xlsx")
	require.Error(t, err)
}
