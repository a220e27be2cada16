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

// AttemptHandler handles task attempt endpoints.
type AttemptHandler struct {
	service *service.AttemptService
}

// NewAttemptHandler constructs an attempt handler.
func NewAttemptHandler(svc *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: svc}
}

// List godoc
// @Summary List task attempts
// @Tags Attempts
// @Produce json
// @Param subjectId query string false "Filter by subject"
// @Param topic query string false "Filter by topic"
// @Param since query string false "Only attempts since date (YYYY-MM-DD)"
// @Param limit query int false "Max rows"
// @Success 200 {object} response.Envelope
// @Router /attempts [get]
func (h *AttemptHandler) List(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var filter models.AttemptFilter
	filter.SubjectID = c.Query("subjectId")
	filter.Topic = c.Query("topic")
	if since := c.Query("since"); since != "" {
		if parsed, err := time.Parse("2006-01-02", since); err == nil {
			filter.Since = parsed
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.Limit = limit
	}

	attempts, err := h.service.List(c.Request.Context(), studentID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attempts, nil)
}

// Record godoc
// @Summary Record a task attempt
// @Tags Attempts
// @Accept json
// @Produce json
// @Param payload body dto.RecordAttemptRequest true "Attempt payload"
// @Success 201 {object} response.Envelope
// @Router /attempts [post]
func (h *AttemptHandler) Record(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attempt, err := h.service.Record(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, attempt)
}
