package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/study-planner-api/internal/models"
)

func optimizerNow() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newTestOptimizer() *OptimizerService {
	return NewOptimizerService(OptimizerServiceParams{Now: optimizerNow})
}

func sessionsOfLength(minutes ...int) []models.StudySession {
	sessions := make([]models.StudySession, 0, len(minutes))
	for _, m := range minutes {
		sessions = append(sessions, models.StudySession{DurationMinutes: m})
	}
	return sessions
}

func TestRecommendDurationDefaultsWithoutHistory(t *testing.T) {
	assert.Equal(t, 25, recommendDuration(nil))
}

func TestRecommendDurationAveragesRecentSessions(t *testing.T) {
	assert.Equal(t, 40, recommendDuration(sessionsOfLength(30, 50, 40)))
}

func TestRecommendDurationUsesOnlyFiveMostRecent(t *testing.T) {
	// Newest-first: five 30-minute sessions, then stale marathon entries
	// that must not drag the average up.
	sessions := sessionsOfLength(30, 30, 30, 30, 30, 120, 120, 120)
	assert.Equal(t, 30, recommendDuration(sessions))
}

func TestRecommendDurationClampsLongSessions(t *testing.T) {
	assert.Equal(t, 45, recommendDuration(sessionsOfLength(90, 120)))
}

func TestSuggestNextSessionNoUpcomingExams(t *testing.T) {
	svc := newTestOptimizer()

	suggestion := svc.SuggestNextSession(SuggestSessionParams{
		Exams: []models.Exam{{SubjectID: "math", ExamDate: optimizerNow().Add(-24 * time.Hour)}},
	})

	assert.Equal(t, "General Review", suggestion.SuggestedSubject)
	assert.Empty(t, suggestion.SuggestedTopics)
	assert.Equal(t, "maintenance and review", suggestion.Reasoning)
	assert.Equal(t, 25, suggestion.RecommendedDuration)
}

func TestSuggestNextSessionUnknownSubjectWinsImmediately(t *testing.T) {
	svc := newTestOptimizer()

	suggestion := svc.SuggestNextSession(SuggestSessionParams{
		History: attemptsWithResults("math", repeatResults(true, 5)),
		Exams: []models.Exam{
			{SubjectID: "math", ExamDate: optimizerNow().Add(48 * time.Hour), Weight: 50},
			{SubjectID: "chemistry", ExamDate: optimizerNow().Add(20 * 24 * time.Hour), Weight: 10},
		},
		Subjects: []models.Subject{{ID: "chemistry", Name: "Chemistry"}},
	})

	assert.Equal(t, "Chemistry", suggestion.SuggestedSubject)
	assert.Equal(t, "urgent exam preparation needed", suggestion.Reasoning)
}

func TestSuggestNextSessionPicksStrugglingSubject(t *testing.T) {
	svc := newTestOptimizer()

	history := attemptsWithResults("math", repeatResults(false, 6))
	history = append(history, attemptsWithResults("physics", repeatResults(true, 6))...)

	suggestion := svc.SuggestNextSession(SuggestSessionParams{
		History: history,
		Exams: []models.Exam{
			// math: (1/2) * 1.0 * 40 = 20; physics: (1/2) * 0 * 40 = 0.
			{SubjectID: "math", ExamDate: optimizerNow().Add(48 * time.Hour), Weight: 40},
			{SubjectID: "physics", ExamDate: optimizerNow().Add(48 * time.Hour), Weight: 40},
		},
		Subjects: []models.Subject{
			{ID: "math", Name: "Mathematics"},
			{ID: "physics", Name: "Physics"},
		},
	})

	assert.Equal(t, "Mathematics", suggestion.SuggestedSubject)
	assert.Equal(t, "urgent exam preparation needed", suggestion.Reasoning)
}

func TestSuggestNextSessionModerateReasoning(t *testing.T) {
	svc := newTestOptimizer()

	// Success rate 0.5, 5 days out, weight 30: (1/5) * 0.5 * 30 = 3.
	history := attemptsWithResults("math", []bool{true, false, true, false, true, false})

	suggestion := svc.SuggestNextSession(SuggestSessionParams{
		History: history,
		Exams:   []models.Exam{{SubjectID: "math", ExamDate: optimizerNow().Add(5 * 24 * time.Hour), Weight: 30}},
	})

	assert.Equal(t, "moderate preparation recommended", suggestion.Reasoning)
	// No subject catalog supplied, so the raw id is surfaced.
	assert.Equal(t, "math", suggestion.SuggestedSubject)
}

func TestPickTopicsRanksStrugglingAndStale(t *testing.T) {
	now := optimizerNow()
	history := []models.TaskAttempt{
		{SubjectID: "math", Topic: "algebra", Correct: true, AttemptedAt: now.Add(-24 * time.Hour)},
		{SubjectID: "math", Topic: "algebra", Correct: true, AttemptedAt: now.Add(-12 * time.Hour)},
		{SubjectID: "math", Topic: "calculus", Correct: false, AttemptedAt: now.Add(-24 * time.Hour)},
		{SubjectID: "math", Topic: "geometry", Correct: true, AttemptedAt: now.Add(-21 * 24 * time.Hour)},
		{SubjectID: "math", Topic: "vectors", Correct: false, AttemptedAt: now.Add(-7 * 24 * time.Hour)},
		{SubjectID: "physics", Topic: "optics", Correct: false, AttemptedAt: now.Add(-24 * time.Hour)},
	}

	topics := pickTopics(history, "math", now)

	// vectors: 1 + 1 = 2; geometry: 0 + 3 = 3; calculus: 1 + 1/7; algebra lowest.
	assert.Equal(t, []string{"geometry", "vectors", "calculus"}, topics)
}

func TestPickTopicsCapsAtThree(t *testing.T) {
	now := optimizerNow()
	history := make([]models.TaskAttempt, 0, 5)
	for _, topic := range []string{"a", "b", "c", "d", "e"} {
		history = append(history, models.TaskAttempt{
			SubjectID:   "math",
			Topic:       topic,
			Correct:     false,
			AttemptedAt: now.Add(-24 * time.Hour),
		})
	}

	topics := pickTopics(history, "math", now)

	assert.Len(t, topics, 3)
}
