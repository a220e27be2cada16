package service

import (
	"math"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// Tier durations are fixed averages used to convert hour buckets into
// session counts.
const (
	easySessionMinutes   = 45
	mediumSessionMinutes = 60
	hardSessionMinutes   = 75
	reviewSessionMinutes = 60
)

// plannedSession is one slot in the distributed schedule before topics and
// persistence metadata are attached.
type plannedSession struct {
	DayOffset       int
	Difficulty      models.Difficulty
	TimeOfDay       models.TimeOfDay
	DurationMinutes int
	Review          bool
}

// tierCounts splits the estimated hours into three equal buckets and
// converts each into a session count at that tier's average duration.
func tierCounts(estimatedHours float64) (easy, medium, hard int) {
	tierHours := estimatedHours / 3
	easy = int(math.Ceil(tierHours * 60 / easySessionMinutes))
	medium = int(math.Ceil(tierHours * 60 / mediumSessionMinutes))
	hard = int(math.Ceil(tierHours * 60 / hardSessionMinutes))
	return easy, medium, hard
}

// distributeSessions spreads the tiered sessions evenly across the days
// remaining before the exam. Difficulty escalates with date: all easy
// sessions first, then medium, then hard, each mapped to a fixed time of
// day. A dedicated review session is appended the day before the exam.
//
// The i-th session lands on floor((daysUntil/totalSessions)*i), which keeps
// offsets non-decreasing and never past daysUntil-1.
func distributeSessions(estimatedHours float64, daysUntil int) []plannedSession {
	easy, medium, hard := tierCounts(estimatedHours)
	total := easy + medium + hard
	if total <= 0 || daysUntil <= 0 {
		return nil
	}

	sessions := make([]plannedSession, 0, total+1)
	for i := 0; i < total; i++ {
		offset := int(math.Floor(float64(daysUntil) / float64(total) * float64(i)))
		if offset > daysUntil-1 {
			offset = daysUntil - 1
		}

		session := plannedSession{DayOffset: offset}
		switch {
		case i < easy:
			session.Difficulty = models.DifficultyEasy
			session.TimeOfDay = models.TimeOfDayMorning
			session.DurationMinutes = easySessionMinutes
		case i < easy+medium:
			session.Difficulty = models.DifficultyMedium
			session.TimeOfDay = models.TimeOfDayAfternoon
			session.DurationMinutes = mediumSessionMinutes
		default:
			session.Difficulty = models.DifficultyHard
			session.TimeOfDay = models.TimeOfDayEvening
			session.DurationMinutes = hardSessionMinutes
		}
		sessions = append(sessions, session)
	}

	sessions = append(sessions, plannedSession{
		DayOffset:       daysUntil - 1,
		Difficulty:      models.DifficultyMedium,
		TimeOfDay:       models.TimeOfDayAfternoon,
		DurationMinutes: reviewSessionMinutes,
		Review:          true,
	})

	return sessions
}

// recommendSessionCount applies the day-bucketed heuristic with a floor of
// min(unitCount, 3).
func recommendSessionCount(daysUntil, unitCount int) int {
	var recommended int
	switch {
	case daysUntil <= 7:
		recommended = min(int(math.Floor(float64(daysUntil)*0.7)), 5)
	case daysUntil <= 14:
		recommended = min(int(math.Floor(float64(daysUntil)*0.4)), 8)
	case daysUntil <= 30:
		recommended = min(int(math.Floor(float64(daysUntil)*0.25)), 12)
	default:
		recommended = min(int(math.Floor(float64(daysUntil)*0.15)), 20)
	}

	if floor := min(unitCount, 3); recommended < floor {
		recommended = floor
	}
	return recommended
}
