package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	"github.com/prepdeck/study-planner-api/internal/service"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

// AssignmentHandler handles assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param subjectId query string false "Filter by subject"
// @Param dueAfter query string false "Only assignments due after date (YYYY-MM-DD)"
// @Param incomplete query bool false "Only incomplete assignments"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var filter models.AssignmentFilter
	filter.SubjectID = c.Query("subjectId")
	if due := c.Query("dueAfter"); due != "" {
		if parsed, err := time.Parse("2006-01-02", due); err == nil {
			filter.DueAfter = parsed
		}
	}
	filter.Incomplete = c.Query("incomplete") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	assignments, pagination, err := h.service.List(c.Request.Context(), studentID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get assignment by id
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204 "No Content"
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
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
