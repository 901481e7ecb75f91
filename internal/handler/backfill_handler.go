package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinsight/biomed-admin-api/internal/service"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
	"github.com/clinsight/biomed-admin-api/pkg/response"
)

// BackfillHandler exposes the admin file-reference repair job.
type BackfillHandler struct {
	service *service.BackfillService
}

// NewBackfillHandler creates a new handler.
func NewBackfillHandler(svc *service.BackfillService) *BackfillHandler {
	return &BackfillHandler{service: svc}
}

// Run godoc
// @Summary Backfill survey file references
// @Description Scans surveys missing a stored-file reference and links the ones whose file can be located
// @Tags Admin
// @Produce json
// @Param limit query int false "Maximum rows to scan"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/backfill [post]
func (h *BackfillHandler) Run(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	result, err := h.service.Run(c.Request.Context(), claimsFromContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
