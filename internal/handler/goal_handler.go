package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/service"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

// GoalHandler handles goal endpoints.
type GoalHandler struct {
	service *service.GoalService
}

// NewGoalHandler constructs a goal handler.
func NewGoalHandler(svc *service.GoalService) *GoalHandler {
	return &GoalHandler{service: svc}
}

// List godoc
// @Summary List goals
// @Tags Goals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	goals, err := h.service.List(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goals, nil)
}

// Create godoc
// @Summary Create goal
// @Tags Goals
// @Accept json
// @Produce json
// @Param payload body service.CreateGoalRequest true "Goal payload"
// @Success 201 {object} response.Envelope
// @Router /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req service.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	goal, err := h.service.Create(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, goal)
}
