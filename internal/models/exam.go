package models

import (
	"time"

	"github.com/lib/pq"
)

// Exam represents an upcoming exam the student is preparing for.
type Exam struct {
	ID        string         `db:"id" json:"id"`
	StudentID string         `db:"student_id" json:"student_id"`
	SubjectID string         `db:"subject_id" json:"subject_id"`
	PaperType string         `db:"paper_type" json:"paper_type"`
	ExamDate  time.Time      `db:"exam_date" json:"exam_date"`
	Units     pq.StringArray `db:"units" json:"units"`
	Weight    float64        `db:"weight" json:"weight"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// CleanedUnits returns the unit list with blank entries removed.
func (e *Exam) CleanedUnits() []string {
	units := make([]string, 0, len(e.Units))
	for _, unit := range e.Units {
		if unit != "" {
			units = append(units, unit)
		}
	}
	return units
}

// ExamFilter captures supported filters for listing exams.
type ExamFilter struct {
	SubjectID string
	After     time.Time
	Before    time.Time
	Page      int
	PageSize  int
}
