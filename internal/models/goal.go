package models

import "time"

// Goal is a student-declared target consumed by the context aggregator.
type Goal struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	Title           string    `db:"title" json:"title"`
	TargetDate      time.Time `db:"target_date" json:"target_date"`
	ProgressPercent float64   `db:"progress_percent" json:"progress_percent"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
