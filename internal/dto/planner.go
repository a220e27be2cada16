package dto

import "github.com/prepdeck/study-planner-api/internal/models"

// CalculatePlanRequest starts a plan calculation for one exam.
type CalculatePlanRequest struct {
	ExamID string `json:"examId" validate:"required"`
}

// PlanPreviewResponse exposes every value computed during calculation,
// plus the utilization advisory for the UI.
type PlanPreviewResponse struct {
	PlanID               string                `json:"planId"`
	Status               models.PlanStatus     `json:"status"`
	DaysUntilExam        int                   `json:"daysUntilExam"`
	AvailableHoursPerDay float64               `json:"availableHoursPerDay"`
	TotalAvailableHours  float64               `json:"totalAvailableHours"`
	EstimatedHoursNeeded float64               `json:"estimatedHoursNeeded"`
	EstimateSource       models.EstimateSource `json:"estimateSource"`
	RecommendedSessions  int                   `json:"recommendedSessions"`
	HoursPerSession      float64               `json:"hoursPerSession"`
	Utilization          float64               `json:"utilization"`
	HighCommitment       bool                  `json:"highCommitment"`
	Reasoning            string                `json:"reasoning,omitempty"`
	Recommendation       string                `json:"recommendation,omitempty"`
}

// SessionResult reports the persistence outcome of one generated session.
type SessionResult struct {
	SessionID       string            `json:"sessionId,omitempty"`
	Topic           string            `json:"topic"`
	Difficulty      models.Difficulty `json:"difficulty"`
	ScheduledDate   string            `json:"scheduledDate"`
	TimeOfDay       models.TimeOfDay  `json:"timeOfDay"`
	DurationMinutes int               `json:"durationMinutes"`
	Persisted       bool              `json:"persisted"`
	Error           string            `json:"error,omitempty"`
}

// ConfirmPlanResponse is the outcome of preview confirmation. When some
// sessions fail to persist the response carries per-item detail and the
// partial flag instead of rolling back.
type ConfirmPlanResponse struct {
	PlanID   string            `json:"planId"`
	Status   models.PlanStatus `json:"status"`
	Sessions []SessionResult   `json:"sessions"`
	Partial  bool              `json:"partial"`
	Summary  string            `json:"summary"`
}
