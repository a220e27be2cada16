package models

// Derived analytics values. Everything in this file is recomputed on
// request and never persisted.

// TimeEstimate is a blended per-task duration estimate in minutes.
type TimeEstimate struct {
	Minutes    int     `json:"minutes"`
	Confidence float64 `json:"confidence"`
}

// ExamPrepEstimate is the modelled total preparation need for an exam.
type ExamPrepEstimate struct {
	Hours      float64 `json:"hours"`
	Confidence float64 `json:"confidence"`
}

// TrendDirection classifies a success-rate slope.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// TrendAnalysis summarises recent performance movement for a subject.
type TrendAnalysis struct {
	Trend             TrendDirection `json:"trend"`
	Slope             float64        `json:"slope"`
	RecentSuccessRate float64        `json:"recent_success_rate"`
	Confidence        float64        `json:"confidence"`
}

// ExamOutlook predicts an exam result from trend data.
type ExamOutlook struct {
	PredictedGrade int     `json:"predicted_grade"`
	Confidence     float64 `json:"confidence"`
	Outlook        string  `json:"outlook"`
}

// PriorityFactors is the explainable breakdown behind a priority score.
type PriorityFactors struct {
	Urgency    float64 `json:"urgency"`
	Weight     float64 `json:"weight,omitempty"`
	PrepGap    float64 `json:"prep_gap,omitempty"`
	Completion float64 `json:"completion,omitempty"`
	Effort     float64 `json:"effort,omitempty"`
}

// PriorityScore is a bounded 0-100 urgency/importance composite.
type PriorityScore struct {
	Score   int             `json:"score"`
	Factors PriorityFactors `json:"factors"`
}

// TaskKind tags ranked items by origin.
type TaskKind string

const (
	TaskKindExam       TaskKind = "exam"
	TaskKindAssignment TaskKind = "assignment"
)

// RankedTask is one entry in the combined priority ranking.
type RankedTask struct {
	Kind     TaskKind        `json:"type"`
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Deadline string          `json:"deadline"`
	Score    int             `json:"score"`
	Factors  PriorityFactors `json:"factors"`
}

// SessionSuggestion recommends the next study session.
type SessionSuggestion struct {
	RecommendedDuration int      `json:"recommended_duration"`
	SuggestedSubject    string   `json:"suggested_subject"`
	SuggestedTopics     []string `json:"suggested_topics"`
	Reasoning           string   `json:"reasoning"`
}
