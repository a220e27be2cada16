package models

import "time"

// Subject represents a subject the student is studying.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Name         string    `db:"name" json:"name"`
	Category     string    `db:"category" json:"category"`
	Level        string    `db:"level" json:"level"`
	Color        string    `db:"color" json:"color"`
	CurrentGrade float64   `db:"current_grade" json:"current_grade"`
	TargetGrade  float64   `db:"target_grade" json:"target_grade"`
	Archived     bool      `db:"archived" json:"archived"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Category        string
	IncludeArchived bool
	Search          string
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}
