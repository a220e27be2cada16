package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

type planService interface {
	Calculate(ctx context.Context, studentID, examID string) (*dto.PlanPreviewResponse, error)
	Confirm(ctx context.Context, studentID, planID string) (*dto.ConfirmPlanResponse, error)
	GetPlan(ctx context.Context, studentID, planID string) (*models.StudyPlan, error)
	ListPlans(ctx context.Context, studentID string) ([]models.StudyPlan, error)
}

type planExporter interface {
	ExportPlan(ctx context.Context, studentID, planID, format string) ([]byte, string, error)
}

// PlanHandler handles study plan endpoints.
type PlanHandler struct {
	planner planService
	export  planExporter
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(planner planService, export planExporter) *PlanHandler {
	return &PlanHandler{planner: planner, export: export}
}

// Calculate godoc
// @Summary Calculate a study plan preview for an exam
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.CalculatePlanRequest true "Calculation payload"
// @Success 200 {object} response.Envelope
// @Router /plans/calculate [post]
func (h *PlanHandler) Calculate(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	var req dto.CalculatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	preview, err := h.planner.Calculate(c.Request.Context(), studentID, req.ExamID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Confirm godoc
// @Summary Confirm a previewed plan and persist its sessions
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Router /plans/{id}/confirm [post]
func (h *PlanHandler) Confirm(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	result, err := h.planner.Confirm(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if result.Partial {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// Get godoc
// @Summary Get plan by id
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	plan, err := h.planner.GetPlan(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// List godoc
// @Summary List plans
// @Tags Plans
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	plans, err := h.planner.ListPlans(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Export godoc
// @Summary Export a completed plan as CSV or PDF
// @Tags Plans
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Plan ID"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {file} file
// @Router /plans/{id}/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	planID := c.Param("id")
	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.export.ExportPlan(c.Request.Context(), studentID, planID, format)
	if err != nil {
		respondError(c, err)
		return
	}
	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"study-plan-%s.%s\"", planID, ext))
	c.Data(http.StatusOK, contentType, data)
}
