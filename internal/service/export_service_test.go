package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type surveySourceStub struct {
	surveys []models.Survey
	err     error
}

func (s surveySourceStub) List(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter) ([]models.Survey, error) {
	return s.surveys, s.err
}

type fetcherStub struct {
	files   map[string][]byte
	failing map[string]bool
	fetched []string
}

func (f *fetcherStub) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	f.fetched = append(f.fetched, ref)
	if f.failing[ref] {
		return nil, errors.New("object unavailable")
	}
	return io.NopCloser(bytes.NewReader(f.files[ref])), nil
}

func strPtr(s string) *string { return &s }

func surveyWithFile(id, service, ref string) models.Survey {
	return models.Survey{
		ID:      id,
		Kind:    "satisfaccion",
		Service: service,
		Date:    time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Payload: models.Payload{"pdfPath": "uploads/" + ref},
		FileRef: strPtr(ref),
	}
}

func TestExportServicePrepareSkipsRowsWithoutFiles(t *testing.T) {
	source := surveySourceStub{surveys: []models.Survey{
		surveyWithFile("s1", "radiologia", "s1.pdf"),
		{ID: "s2", Service: "radiologia"},
		surveyWithFile("s3", "radiologia", "s3.pdf"),
	}}
	svc := NewExportService(source, &fetcherStub{}, nil, zap.NewNop())

	job, err := svc.Prepare(context.Background(), &models.JWTClaims{UserID: "u1"}, models.SurveyFilter{Kind: "satisfaccion"})
	require.NoError(t, err)
	require.Len(t, job.Entries, 2)
	require.Equal(t, "s1.pdf", job.Entries[0].FileRef)
	require.Equal(t, "s3.pdf", job.Entries[1].FileRef)
	require.Equal(t, "satisfaccion", job.Kind)
}

func TestExportServicePrepareNoExportableRecords(t *testing.T) {
	source := surveySourceStub{surveys: []models.Survey{
		{ID: "s1"},
		{ID: "s2", FileRef: strPtr("")},
	}}
	svc := NewExportService(source, &fetcherStub{}, nil, zap.NewNop())

	_, err := svc.Prepare(context.Background(), &models.JWTClaims{UserID: "u1"}, models.SurveyFilter{})
	require.Error(t, err)
	require.ErrorIs(t, err, appErrors.ErrNoExportableRecords)
}

func TestExportServicePreparePropagatesQueryErrors(t *testing.T) {
	source := surveySourceStub{err: appErrors.ErrForbidden}
	svc := NewExportService(source, &fetcherStub{}, nil, zap.NewNop())

	_, err := svc.Prepare(context.Background(), &models.JWTClaims{UserID: "u1"}, models.SurveyFilter{})
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestExportServiceStreamWritesArchive(t *testing.T) {
	source := surveySourceStub{surveys: []models.Survey{
		surveyWithFile("s1", "radiologia", "s1.pdf"),
		surveyWithFile("s2", "radiologia", "s2.pdf"),
	}}
	fetcher := &fetcherStub{files: map[string][]byte{
		"s1.pdf": []byte("first document"),
		"s2.pdf": []byte("second document"),
	}}
	svc := NewExportService(source, fetcher, nil, zap.NewNop())

	job, err := svc.Prepare(context.Background(), &models.JWTClaims{UserID: "u1"}, models.SurveyFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Stream(context.Background(), job, &buf))
	require.Equal(t, []string{"s1.pdf", "s2.pdf"}, fetcher.fetched)

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	require.Equal(t, "s1.pdf", reader.File[0].Name)
	require.Equal(t, "s2.pdf", reader.File[1].Name)

	rc, err := reader.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "first document", string(content))
}

func TestExportServiceStreamPlaceholderOnFetchFailure(t *testing.T) {
	source := surveySourceStub{surveys: []models.Survey{
		surveyWithFile("s1", "radiologia", "s1.pdf"),
		surveyWithFile("s2", "radiologia", "broken.pdf"),
		surveyWithFile("s3", "radiologia", "s3.pdf"),
	}}
	fetcher := &fetcherStub{
		files:   map[string][]byte{"s1.pdf": []byte("a"), "s3.pdf": []byte("b")},
		failing: map[string]bool{"broken.pdf": true},
	}
	svc := NewExportService(source, fetcher, nil, zap.NewNop())

	job, err := svc.Prepare(context.Background(), &models.JWTClaims{UserID: "u1"}, models.SurveyFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Stream(context.Background(), job, &buf))

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 3)
	require.Equal(t, "errors/broken.pdf.txt", reader.File[1].Name)

	rc, err := reader.File[1].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Contains(t, string(content), "broken.pdf")
}

func TestExportServiceStreamHonoursCancellation(t *testing.T) {
	source := surveySourceStub{surveys: []models.Survey{
		surveyWithFile("s1", "radiologia", "s1.pdf"),
	}}
	svc := NewExportService(source, &fetcherStub{files: map[string][]byte{"s1.pdf": []byte("a")}}, nil, zap.NewNop())

	job, err := svc.Prepare(context.Background(), &models.JWTClaims{UserID: "u1"}, models.SurveyFilter{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	require.Error(t, svc.Stream(ctx, job, &buf))
}

func TestDeriveEntryName(t *testing.T) {
	base := models.Survey{
		ID:      "abc-123",
		Service: "radiologia",
		Date:    time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
	}

	t.Run("uses basename of recorded path", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{"pdfPath": "surveys/2025/paciente 42.pdf"}
		require.Equal(t, "paciente_42.pdf", DeriveEntryName(survey))
	})

	t.Run("handles windows separators", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{"pdfPath": `C:\exports\informe.pdf`}
		require.Equal(t, "informe.pdf", DeriveEntryName(survey))
	})

	t.Run("trailing separator falls back to synthesis", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{"pdfPath": "surveys/2025/", "identificacion": "99887766"}
		require.Equal(t, "99887766_sin_servicio_sin_fecha.pdf", DeriveEntryName(survey))
	})

	t.Run("synthesizes from payload fields", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{
			"identificacion": "1053812345",
			"servicio":       "radiologia",
			"fechaHora":      "2025-03-14 10:30",
		}
		require.Equal(t, "1053812345_radiologia_2025-03-14_10_30.pdf", DeriveEntryName(survey))
	})

	t.Run("falls back to id and servicio aliases", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{"id": "patient-7", "servicio": "mamografia"}
		require.Equal(t, "patient-7_mamografia_sin_fecha.pdf", DeriveEntryName(survey))
	})

	t.Run("tipoMamografia stands in for servicio", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{
			"identificacion": "1053812345",
			"tipoMamografia": "tamizaje",
		}
		require.Equal(t, "1053812345_tamizaje_sin_fecha.pdf", DeriveEntryName(survey))
	})

	t.Run("ignores row columns when payload is empty", func(t *testing.T) {
		survey := base
		require.Equal(t, "sin_id_sin_servicio_sin_fecha.pdf", DeriveEntryName(survey))
	})

	t.Run("placeholders for missing parts", func(t *testing.T) {
		survey := models.Survey{}
		require.Equal(t, "sin_id_sin_servicio_sin_fecha.pdf", DeriveEntryName(survey))
	})

	t.Run("strips characters unsafe for extraction", func(t *testing.T) {
		survey := base
		survey.Payload = models.Payload{"pdfPath": `informe:final?v2.pdf`}
		require.Equal(t, "informe_final_v2.pdf", DeriveEntryName(survey))
	})
}

func TestArchiveFilename(t *testing.T) {
	now := time.UnixMilli(1742000000000)
	require.Equal(t, "satisfaccion_1742000000000.zip", ArchiveFilename("satisfaccion", now))
	require.Equal(t, "all_1742000000000.zip", ArchiveFilename("", now))
}
