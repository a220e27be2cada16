// Package oracle defines the capability interfaces for the external
// LLM-backed estimation and session-generation service. Callers treat the
// service as untrusted: every numeric result is validated and clamped by the
// consumer, and a deterministic fallback is always available.
package oracle

import (
	"context"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// EstimateRequest carries the exam context sent to the estimation service.
type EstimateRequest struct {
	Subject          string   `json:"subject"`
	PaperType        string   `json:"paperType"`
	Units            []string `json:"units"`
	DaysUntilExam    int      `json:"daysUntilExam"`
	AvailableHours   float64  `json:"availableHours"`
	GradeLevel       string   `json:"gradeLevel"`
	EducationSystem  string   `json:"educationSystem"`
	EducationProgram string   `json:"educationProgram"`
}

// Estimate is the validated result of an estimation call.
type Estimate struct {
	Hours          float64
	Breakdown      map[string]float64
	Reasoning      string
	Recommendation string
	Source         models.EstimateSource
}

// GenerateRequest carries the confirmed plan context for the streamed
// session-generation call. Dates are never requested from the service; the
// planner injects them after parsing.
type GenerateRequest struct {
	Subject       string   `json:"subject"`
	PaperType     string   `json:"paperType"`
	Units         []string `json:"units"`
	SessionCount  int      `json:"sessionCount"`
	DaysUntilExam int      `json:"daysUntilExam"`
}

// Estimator produces an hours estimate for exam preparation.
type Estimator interface {
	EstimateExamPrep(ctx context.Context, req EstimateRequest) (Estimate, error)
}

// SessionGenerator produces a typed event stream describing session topics.
type SessionGenerator interface {
	GenerateSessions(ctx context.Context, req GenerateRequest) ([]ScheduleEvent, error)
}
