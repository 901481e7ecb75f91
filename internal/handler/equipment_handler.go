package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinsight/biomed-admin-api/internal/service"
	"github.com/clinsight/biomed-admin-api/pkg/response"
)

// EquipmentHandler serves the biomedical equipment roster.
type EquipmentHandler struct {
	service *service.EquipmentService
}

// NewEquipmentHandler creates a new handler.
func NewEquipmentHandler(svc *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: svc}
}

// List godoc
// @Summary List equipment
// @Description Lists the equipment roster, or looks up one device when ?sn= is given
// @Tags Equipment
// @Produce json
// @Param sn query string false "Serial number"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /equipos [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	if serial := c.Query("sn"); serial != "" {
		item, err := h.service.GetBySerial(c.Request.Context(), serial)
		if err != nil {
			response.Error(c, err)
			return
		}
		// item is nil for an unknown serial; the client treats that as "not found".
		response.JSON(c, http.StatusOK, item, nil)
		return
	}

	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}
