package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinsight/biomed-admin-api/internal/models"
	"github.com/clinsight/biomed-admin-api/internal/service"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
	"github.com/clinsight/biomed-admin-api/pkg/response"
)

// SurveyHandler serves survey listing endpoints.
type SurveyHandler struct {
	service *service.SurveyService
}

// NewSurveyHandler creates a new handler.
func NewSurveyHandler(svc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{service: svc}
}

var filterDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseFilterDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range filterDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable date %q", raw)
}

// parseSurveyFilter reads the shared filter query parameters. Bad dates are a
// caller error, not something to silently drop.
func parseSurveyFilter(c *gin.Context) (models.SurveyFilter, error) {
	filter := models.SurveyFilter{
		Kind:    c.Query("tipo"),
		Service: c.Query("servicio"),
	}

	start, err := parseFilterDate(c.Query("start"))
	if err != nil {
		return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid start date")
	}
	filter.Start = start

	end, err := parseFilterDate(c.Query("end"))
	if err != nil {
		return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid end date")
	}
	filter.End = end

	return filter, nil
}

// List godoc
// @Summary List surveys
// @Description Lists surveys matching the filters, newest first, scoped to the caller
// @Tags Surveys
// @Produce json
// @Param tipo query string false "Survey kind"
// @Param servicio query string false "Service name, or 'all'"
// @Param start query string false "Inclusive start date"
// @Param end query string false "Inclusive end date"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /encuestas [get]
func (h *SurveyHandler) List(c *gin.Context) {
	filter, err := parseSurveyFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	surveys, err := h.service.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, surveys, nil)
}

// Services godoc
// @Summary List distinct services
// @Description Lists the distinct service names present in the survey data
// @Tags Surveys
// @Produce json
// @Param tipo query string false "Survey kind"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /servicios [get]
func (h *SurveyHandler) Services(c *gin.Context) {
	services, err := h.service.Services(c.Request.Context(), claimsFromContext(c), c.Query("tipo"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, services, nil)
}
