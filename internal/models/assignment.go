package models

import "time"

// Assignment represents graded work with a due date.
type Assignment struct {
	ID                string    `db:"id" json:"id"`
	StudentID         string    `db:"student_id" json:"student_id"`
	SubjectID         string    `db:"subject_id" json:"subject_id"`
	Title             string    `db:"title" json:"title"`
	DueDate           time.Time `db:"due_date" json:"due_date"`
	CompletionPercent float64   `db:"completion_percent" json:"completion_percent"`
	EstimatedHours    float64   `db:"estimated_hours" json:"estimated_hours"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter captures supported filters for listing assignments.
type AssignmentFilter struct {
	SubjectID  string
	DueAfter   time.Time
	Incomplete bool
	Page       int
	PageSize   int
}
