package dto

import (
	"time"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// SubjectTrend pairs a subject with its computed trend and outlook.
type SubjectTrend struct {
	SubjectID   string               `json:"subjectId"`
	SubjectName string               `json:"subjectName"`
	Trend       models.TrendAnalysis `json:"trend"`
	Outlook     *models.ExamOutlook  `json:"outlook,omitempty"`
}

// StudyContext is the single ranked, annotated object the aggregator
// assembles for the dashboard and assistant prompt.
type StudyContext struct {
	StudentID   string                    `json:"studentId"`
	DisplayName string                    `json:"displayName"`
	GradeLevel  string                    `json:"gradeLevel"`
	Ranked      []models.RankedTask       `json:"ranked"`
	Trends      []SubjectTrend            `json:"trends"`
	Suggestion  models.SessionSuggestion  `json:"suggestion"`
	Goals       []models.Goal             `json:"goals"`
	GeneratedAt time.Time                 `json:"generatedAt"`
}
