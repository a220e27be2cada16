package models

import "time"

// Difficulty is the ordinal practice difficulty scale.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// TaskAttempt is an append-only record of one practice task outcome.
// The planner only ever reads attempts; it never mutates history.
type TaskAttempt struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	SubjectID        string     `db:"subject_id" json:"subject_id"`
	Topic            string     `db:"topic" json:"topic"`
	Difficulty       Difficulty `db:"difficulty" json:"difficulty"`
	Correct          bool       `db:"correct" json:"correct"`
	TimeSpentSeconds int        `db:"time_spent_seconds" json:"time_spent_seconds"`
	EstimatedMinutes int        `db:"estimated_minutes" json:"estimated_minutes"`
	AttemptedAt      time.Time  `db:"attempted_at" json:"attempted_at"`
}

// MinutesSpent returns actual time spent expressed in minutes.
func (a *TaskAttempt) MinutesSpent() float64 {
	return float64(a.TimeSpentSeconds) / 60.0
}

// AttemptFilter captures supported filters for listing attempts.
type AttemptFilter struct {
	SubjectID string
	Topic     string
	Since     time.Time
	Limit     int
}
