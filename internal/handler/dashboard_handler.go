package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinsight/biomed-admin-api/internal/models"
	"github.com/clinsight/biomed-admin-api/internal/service"
	"github.com/clinsight/biomed-admin-api/pkg/response"
)

// DashboardHandler serves aggregated survey statistics.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Returns grouped survey counts for the selected filters and period
// @Tags Dashboard
// @Produce json
// @Param tipo query string false "Survey kind"
// @Param servicio query string false "Service name, or 'all'"
// @Param start query string false "Inclusive start date"
// @Param end query string false "Inclusive end date"
// @Param periodo query string false "Aggregation window: mensual, trimestral, semestral, anual"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	filter, err := parseSurveyFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period := models.Period(c.Query("periodo"))
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), claimsFromContext(c), filter, period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, map[string]interface{}{"cache_hit": cacheHit})
}

// Export godoc
// @Summary Export dashboard report
// @Description Renders the dashboard summary as a CSV or PDF download
// @Tags Dashboard
// @Produce json
// @Param format query string true "Report format: csv or pdf"
// @Param tipo query string false "Survey kind"
// @Param servicio query string false "Service name, or 'all'"
// @Param periodo query string false "Aggregation window"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	filter, err := parseSurveyFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period := models.Period(c.Query("periodo"))
	filename, contentType, body, err := h.service.Report(c.Request.Context(), claimsFromContext(c), filter, period, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
