package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/models"
	"github.com/prepdeck/study-planner-api/internal/service"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

// InsightsHandler exposes the analytics endpoints.
type InsightsHandler struct {
	service *service.InsightsService
}

// NewInsightsHandler constructs an insights handler.
func NewInsightsHandler(svc *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: svc}
}

// TaskTime godoc
// @Summary Predict time for a task from attempt history
// @Tags Insights
// @Produce json
// @Param subjectId query string true "Subject ID"
// @Param difficulty query string true "Difficulty (easy, medium, hard, expert)"
// @Param estimate query int true "Base estimate in minutes"
// @Success 200 {object} response.Envelope
// @Router /insights/task-time [get]
func (h *InsightsHandler) TaskTime(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	subjectID := strings.TrimSpace(c.Query("subjectId"))
	if subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId is required"))
		return
	}
	difficulty := models.Difficulty(c.DefaultQuery("difficulty", string(models.DifficultyMedium)))
	estimate, err := strconv.Atoi(c.DefaultQuery("estimate", "0"))
	if err != nil || estimate <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "estimate must be a positive integer"))
		return
	}
	prediction, err := h.service.PredictTaskTime(c.Request.Context(), studentID, subjectID, difficulty, estimate)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prediction, nil)
}

// ExamPrep godoc
// @Summary Predict preparation hours for an exam
// @Tags Insights
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /insights/exam-prep/{examId} [get]
func (h *InsightsHandler) ExamPrep(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	estimate, err := h.service.PredictExamPrep(c.Request.Context(), studentID, c.Param("examId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, estimate, nil)
}

// Trend godoc
// @Summary Analyze the performance trend for a subject
// @Tags Insights
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /insights/trend/{subjectId} [get]
func (h *InsightsHandler) Trend(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	trend, err := h.service.SubjectTrend(c.Request.Context(), studentID, c.Param("subjectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trend, nil)
}

// Outlook godoc
// @Summary Predict performance for an upcoming exam
// @Tags Insights
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /insights/outlook/{examId} [get]
func (h *InsightsHandler) Outlook(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	outlook, err := h.service.ExamOutlook(c.Request.Context(), studentID, c.Param("examId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outlook, nil)
}

// Priorities godoc
// @Summary Rank exams and assignments by urgency
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights/priorities [get]
func (h *InsightsHandler) Priorities(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	ranked, err := h.service.RankTasks(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranked, nil)
}

// NextSession godoc
// @Summary Suggest the next study session
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights/next-session [get]
func (h *InsightsHandler) NextSession(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	suggestion, err := h.service.SuggestSession(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}
