package models

import "time"

// SessionStatus enumerates the lifecycle of a scheduled study session.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// TimeOfDay is the coarse scheduling slot within a day.
type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
)

// StudySession is a scheduled block of practice, created in bulk by the
// plan generator and mutated by the student as sessions are worked through.
type StudySession struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	SubjectID       string        `db:"subject_id" json:"subject_id"`
	PlanID          string        `db:"plan_id" json:"plan_id,omitempty"`
	Topic           string        `db:"topic" json:"topic"`
	Difficulty      Difficulty    `db:"difficulty" json:"difficulty"`
	ScheduledDate   time.Time     `db:"scheduled_date" json:"scheduled_date"`
	TimeOfDay       TimeOfDay     `db:"time_of_day" json:"time_of_day"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          SessionStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter captures supported filters for listing sessions.
type SessionFilter struct {
	SubjectID string
	PlanID    string
	Status    SessionStatus
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}
