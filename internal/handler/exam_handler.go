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

// ExamHandler handles exam endpoints.
type ExamHandler struct {
	service *service.ExamService
}

// NewExamHandler constructs an exam handler.
func NewExamHandler(svc *service.ExamService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param subjectId query string false "Filter by subject"
// @Param after query string false "Only exams after date (YYYY-MM-DD)"
// @Param before query string false "Only exams before date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var filter models.ExamFilter
	filter.SubjectID = c.Query("subjectId")
	if after := c.Query("after"); after != "" {
		if parsed, err := time.Parse("2006-01-02", after); err == nil {
			filter.After = parsed
		}
	}
	if before := c.Query("before"); before != "" {
		if parsed, err := time.Parse("2006-01-02", before); err == nil {
			filter.Before = parsed
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	exams, pagination, err := h.service.List(c.Request.Context(), studentID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, pagination)
}

// Get godoc
// @Summary Get exam by id
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	exam, err := h.service.Get(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.service.Create(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.service.Update(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204 "No Content"
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
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
