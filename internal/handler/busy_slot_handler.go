package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/service"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

// BusySlotHandler handles busy slot endpoints.
type BusySlotHandler struct {
	service *service.BusySlotService
}

// NewBusySlotHandler constructs a busy slot handler.
func NewBusySlotHandler(svc *service.BusySlotService) *BusySlotHandler {
	return &BusySlotHandler{service: svc}
}

// List godoc
// @Summary List busy slots
// @Tags BusySlots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /busy-slots [get]
func (h *BusySlotHandler) List(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	slots, err := h.service.List(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Create busy slot
// @Tags BusySlots
// @Accept json
// @Produce json
// @Param payload body dto.CreateBusySlotRequest true "Busy slot payload"
// @Success 201 {object} response.Envelope
// @Router /busy-slots [post]
func (h *BusySlotHandler) Create(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateBusySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, slot)
}

// Delete godoc
// @Summary Delete busy slot
// @Tags BusySlots
// @Param id path string true "Busy slot ID"
// @Success 204 "No Content"
// @Router /busy-slots/{id} [delete]
func (h *BusySlotHandler) Delete(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), studentID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
