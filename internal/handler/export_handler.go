package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/service"
	"github.com/clinsight/biomed-admin-api/pkg/response"
)

// ExportHandler serves the bulk zip download.
type ExportHandler struct {
	service *service.ExportService
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{service: svc, logger: logger, now: time.Now}
}

// Download godoc
// @Summary Download survey PDFs as a zip
// @Description Streams a zip archive of every survey PDF matching the filters
// @Tags Export
// @Produce application/zip
// @Param tipo query string false "Survey kind"
// @Param servicio query string false "Service name, or 'all'"
// @Param start query string false "Inclusive start date"
// @Param end query string false "Inclusive end date"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /export/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	filter, err := parseSurveyFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Everything that can fail as a plain JSON error must fail here, before
	// the first archive byte is written.
	job, err := h.service.Prepare(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := service.ArchiveFilename(filter.Kind, h.now())
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := h.service.Stream(c.Request.Context(), job, c.Writer); err != nil {
		// Headers are gone; all we can do is cut the stream and log it.
		h.logger.Warn("zip export aborted mid-stream",
			zap.String("filename", filename),
			zap.Int("entries", len(job.Entries)),
			zap.Error(err))
		c.Abort()
	}
}
