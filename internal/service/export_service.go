package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type exportSurveySource interface {
	List(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter) ([]models.Survey, error)
}

type fileFetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

type exportMetrics interface {
	ObserveExportDuration(seconds float64)
	IncExportEntry(outcome string)
}

// ExportEntry is one archive member: the stored-file reference to fetch and
// the name it gets inside the archive.
type ExportEntry struct {
	FileRef string
	Name    string
}

// ExportJob is the fully resolved plan for one download: built before the
// first response byte so every query or authorization failure can still be
// reported as a normal error.
type ExportJob struct {
	Kind    string
	Entries []ExportEntry
}

// ExportService assembles zip archives of survey PDFs.
type ExportService struct {
	surveys exportSurveySource
	files   fileFetcher
	metrics exportMetrics
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(surveys exportSurveySource, files fileFetcher, metrics exportMetrics, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{surveys: surveys, files: files, metrics: metrics, logger: logger}
}

// Prepare resolves the caller's scope, runs the filtered query and derives an
// archive entry for every row that carries a file reference. Rows without one
// are skipped; when nothing remains the result is ErrNoExportableRecords.
func (s *ExportService) Prepare(ctx context.Context, claims *models.JWTClaims, filter models.SurveyFilter) (*ExportJob, error) {
	surveys, err := s.surveys.List(ctx, claims, filter)
	if err != nil {
		return nil, err
	}

	job := &ExportJob{Kind: filter.Kind}
	for _, survey := range surveys {
		if !survey.HasFileRef() {
			continue
		}
		job.Entries = append(job.Entries, ExportEntry{
			FileRef: *survey.FileRef,
			Name:    DeriveEntryName(survey),
		})
	}

	if len(job.Entries) == 0 {
		return nil, appErrors.ErrNoExportableRecords
	}
	return job, nil
}

// Stream writes the archive for a prepared job to w, fetching files one at a
// time and flushing after each entry so large exports never buffer fully in
// memory. A file that cannot be fetched becomes a placeholder text entry
// instead of aborting the download; an error while copying bytes aborts,
// since the stream is already damaged at that point.
func (s *ExportService) Stream(ctx context.Context, job *ExportJob, w io.Writer) error {
	start := time.Now()
	zw := zip.NewWriter(w)

	for _, entry := range job.Entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return fmt.Errorf("export cancelled: %w", err)
		}

		if err := s.writeEntry(ctx, zw, entry); err != nil {
			zw.Close()
			return err
		}

		if err := zw.Flush(); err != nil {
			zw.Close()
			return fmt.Errorf("flush archive: %w", err)
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveExportDuration(time.Since(start).Seconds())
	}
	return nil
}

func (s *ExportService) writeEntry(ctx context.Context, zw *zip.Writer, entry ExportEntry) error {
	body, err := s.files.Fetch(ctx, entry.FileRef)
	if err != nil {
		s.logger.Warn("export entry fetch failed",
			zap.String("file_ref", entry.FileRef),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.IncExportEntry("error")
		}
		return s.writePlaceholder(zw, entry.FileRef)
	}
	defer body.Close()

	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: time.Now().UTC(),
	}
	fw, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", entry.Name, err)
	}
	if _, err := io.Copy(fw, body); err != nil {
		return fmt.Errorf("copy archive entry %s: %w", entry.Name, err)
	}

	if s.metrics != nil {
		s.metrics.IncExportEntry("ok")
	}
	return nil
}

func (s *ExportService) writePlaceholder(zw *zip.Writer, ref string) error {
	name := "errors/" + sanitizeName(ref) + ".txt"
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create placeholder entry %s: %w", name, err)
	}
	if _, err := io.WriteString(fw, "could not retrieve file: "+ref+"\n"); err != nil {
		return fmt.Errorf("write placeholder entry %s: %w", name, err)
	}
	return nil
}

// ArchiveFilename builds the attachment filename for a download: the survey
// kind (or "all") plus an epoch-millisecond stamp.
func ArchiveFilename(kind string, now time.Time) string {
	if kind == "" {
		kind = "all"
	}
	return fmt.Sprintf("%s_%d.zip", sanitizeName(kind), now.UnixMilli())
}

var whitespaceRun = regexp.MustCompile(`\s+`)

var unsafeChars = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

func sanitizeName(raw string) string {
	return unsafeChars.Replace(whitespaceRun.ReplaceAllString(raw, "_"))
}

func payloadFirst(payload models.Payload, fallback string, keys ...string) string {
	for _, key := range keys {
		if v := payload.String(key); v != "" {
			return v
		}
	}
	return fallback
}

// DeriveEntryName picks the archive member name for one survey. When the
// payload records the original upload path its basename wins; otherwise the
// name is synthesized from the payload fields the intake app named uploads
// with (identificacion/id, servicio/tipoMamografia, fechaHora), with explicit
// placeholders for missing parts. Either way the result contains no path
// separators or characters a zip extractor would reject.
func DeriveEntryName(survey models.Survey) string {
	if raw := survey.Payload.String("pdfPath"); raw != "" {
		base := raw
		if idx := strings.LastIndexAny(raw, `/\`); idx >= 0 {
			base = raw[idx+1:]
		}
		if base != "" {
			return sanitizeName(base)
		}
	}

	id := payloadFirst(survey.Payload, "sin_id", "identificacion", "id")
	svc := payloadFirst(survey.Payload, "sin_servicio", "servicio", "tipoMamografia")
	stamp := payloadFirst(survey.Payload, "sin_fecha", "fechaHora")

	return sanitizeName(id+"_"+svc+"_"+stamp) + ".pdf"
}
