package models

import "time"

// PlanStatus enumerates the exam-prep plan state machine. No state is
// re-entrant except via explicit retry from error, which restarts at
// calculation.
type PlanStatus string

const (
	PlanStatusCalculate  PlanStatus = "calculate"
	PlanStatusPreview    PlanStatus = "preview"
	PlanStatusGenerating PlanStatus = "generating"
	PlanStatusComplete   PlanStatus = "complete"
	PlanStatusError      PlanStatus = "error"
)

// EstimateSource records which path produced the hours estimate.
type EstimateSource string

const (
	EstimateSourceOracle   EstimateSource = "oracle"
	EstimateSourceFallback EstimateSource = "fallback"
)

// StudyPlan is one exam-prep schedule generation run.
type StudyPlan struct {
	ID                    string         `db:"id" json:"id"`
	StudentID             string         `db:"student_id" json:"student_id"`
	ExamID                string         `db:"exam_id" json:"exam_id"`
	Status                PlanStatus     `db:"status" json:"status"`
	DaysUntilExam         int            `db:"days_until_exam" json:"days_until_exam"`
	AvailableHoursPerDay  float64        `db:"available_hours_per_day" json:"available_hours_per_day"`
	TotalAvailableHours   float64        `db:"total_available_hours" json:"total_available_hours"`
	EstimatedHoursNeeded  float64        `db:"estimated_hours_needed" json:"estimated_hours_needed"`
	EstimateSource        EstimateSource `db:"estimate_source" json:"estimate_source"`
	RecommendedSessions   int            `db:"recommended_sessions" json:"recommended_sessions"`
	HoursPerSession       float64        `db:"hours_per_session" json:"hours_per_session"`
	EstimateReasoning     string         `db:"estimate_reasoning" json:"estimate_reasoning"`
	EstimateRecommendation string        `db:"estimate_recommendation" json:"estimate_recommendation"`
	Summary               string         `db:"summary" json:"summary"`
	ErrorMessage          string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// Utilization is the share of available time the estimate consumes.
// Values above 0.8 are surfaced to the UI as a high-commitment advisory.
func (p *StudyPlan) Utilization() float64 {
	if p.TotalAvailableHours <= 0 {
		return 0
	}
	return p.EstimatedHoursNeeded / p.TotalAvailableHours
}
