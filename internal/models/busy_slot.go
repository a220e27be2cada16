package models

import (
	"database/sql"
	"time"
)

// BusySlot represents a block of time the student is unavailable to study.
// Recurring slots repeat weekly on DayOfWeek; one-off slots carry a Date.
// Slots are a subtractive input to available-hours computation and are
// never mutated by the planner.
type BusySlot struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	DayOfWeek    int          `db:"day_of_week" json:"day_of_week"`
	Date         sql.NullTime `db:"date" json:"date,omitempty"`
	StartMinutes int          `db:"start_minutes" json:"start_minutes"`
	EndMinutes   int          `db:"end_minutes" json:"end_minutes"`
	Recurring    bool         `db:"recurring" json:"recurring"`
	Label        string       `db:"label" json:"label"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// DurationHours returns the slot length in hours.
func (b *BusySlot) DurationHours() float64 {
	if b.EndMinutes <= b.StartMinutes {
		return 0
	}
	return float64(b.EndMinutes-b.StartMinutes) / 60.0
}
