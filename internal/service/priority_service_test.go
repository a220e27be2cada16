package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/study-planner-api/internal/models"
)

type fakePrepEstimator struct {
	estimate models.ExamPrepEstimate
}

func (f *fakePrepEstimator) PredictExamPrepTime(*models.Exam, []models.TaskAttempt) models.ExamPrepEstimate {
	return f.estimate
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestScoreExamTomorrowHighWeight(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{
		Estimator: &fakePrepEstimator{estimate: models.ExamPrepEstimate{Hours: 10}},
		Now:       fixedNow,
	})
	exam := &models.Exam{
		ID:        "exam-1",
		SubjectID: "math",
		ExamDate:  fixedNow().Add(12 * time.Hour),
		Weight:    80,
	}

	// Urgency 40 (under a day), weight 80/100*30 = 24, gap capped at 30.
	score := svc.ScoreExam(exam, nil, 0)

	assert.Equal(t, 94, score.Score)
	assert.InDelta(t, 40, score.Factors.Urgency, 0.0001)
	assert.InDelta(t, 24, score.Factors.Weight, 0.0001)
	assert.InDelta(t, 30, score.Factors.PrepGap, 0.0001)
}

func TestScoreExamLoggedTimeShrinksGap(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{
		Estimator: &fakePrepEstimator{estimate: models.ExamPrepEstimate{Hours: 4}},
		Now:       fixedNow,
	})
	exam := &models.Exam{
		ID:        "exam-1",
		SubjectID: "math",
		ExamDate:  fixedNow().Add(10 * 24 * time.Hour),
		Weight:    50,
	}

	// 3 of the 4 needed hours already logged: gap = 1*5 = 5.
	score := svc.ScoreExam(exam, nil, 180)

	assert.InDelta(t, 5, score.Factors.PrepGap, 0.0001)
	assert.Equal(t, 40, score.Score)
}

func TestScoreExamDistantExamScoresLow(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{
		Estimator: &fakePrepEstimator{estimate: models.ExamPrepEstimate{Hours: 0}},
		Now:       fixedNow,
	})
	exam := &models.Exam{
		ID:       "exam-1",
		ExamDate: fixedNow().Add(60 * 24 * time.Hour),
		Weight:   20,
	}

	score := svc.ScoreExam(exam, nil, 0)

	assert.InDelta(t, 0, score.Factors.Urgency, 0.0001)
	assert.Equal(t, 6, score.Score)
}

func TestScoreAssignmentDueSoonUntouched(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{Now: fixedNow})
	assignment := &models.Assignment{
		ID:                "hw-1",
		DueDate:           fixedNow().Add(3 * time.Hour),
		CompletionPercent: 0,
		EstimatedHours:    4,
	}

	// Urgency 40 (under 6 hours), completion 30, effort min(30, 4*5) = 20.
	score := svc.ScoreAssignment(assignment)

	assert.Equal(t, 90, score.Score)
	assert.InDelta(t, 40, score.Factors.Urgency, 0.0001)
	assert.InDelta(t, 30, score.Factors.Completion, 0.0001)
	assert.InDelta(t, 20, score.Factors.Effort, 0.0001)
}

func TestScoreAssignmentMostlyDoneScoresLower(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{Now: fixedNow})
	assignment := &models.Assignment{
		ID:                "hw-1",
		DueDate:           fixedNow().Add(10 * 24 * time.Hour),
		CompletionPercent: 90,
		EstimatedHours:    1,
	}

	score := svc.ScoreAssignment(assignment)

	assert.InDelta(t, 10, score.Factors.Urgency, 0.0001)
	assert.InDelta(t, 3, score.Factors.Completion, 0.0001)
	assert.InDelta(t, 5, score.Factors.Effort, 0.0001)
	assert.Equal(t, 18, score.Score)
}

func TestScoreAssignmentDefaultsEffortWhenUnestimated(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{Now: fixedNow})
	assignment := &models.Assignment{
		ID:      "hw-1",
		DueDate: fixedNow().Add(48 * time.Hour),
	}

	score := svc.ScoreAssignment(assignment)

	assert.InDelta(t, 10, score.Factors.Effort, 0.0001)
}

func TestRankTasksOrdersByScoreThenDeadline(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{
		Estimator: &fakePrepEstimator{estimate: models.ExamPrepEstimate{Hours: 0}},
		Now:       fixedNow,
	})

	exams := []models.Exam{
		{ID: "exam-late", SubjectID: "math", PaperType: "Paper 1", ExamDate: fixedNow().Add(5 * 24 * time.Hour), Weight: 20},
		{ID: "exam-soon", SubjectID: "math", PaperType: "Paper 2", ExamDate: fixedNow().Add(2 * 24 * time.Hour), Weight: 20},
	}
	assignments := []models.Assignment{
		{ID: "hw-urgent", Title: "Lab write-up", DueDate: fixedNow().Add(3 * time.Hour), CompletionPercent: 0, EstimatedHours: 4},
	}

	ranked := svc.RankTasks(exams, assignments, nil, nil)

	require.Len(t, ranked, 3)
	assert.Equal(t, "hw-urgent", ranked[0].ID)
	assert.Equal(t, models.TaskKindAssignment, ranked[0].Kind)
	assert.Equal(t, "exam-soon", ranked[1].ID)
	assert.Equal(t, "exam-late", ranked[2].ID)
}

func TestRankTasksTieBreaksOnDeadlineThenID(t *testing.T) {
	svc := NewPriorityService(PriorityServiceParams{
		Estimator: &fakePrepEstimator{estimate: models.ExamPrepEstimate{Hours: 0}},
		Now:       fixedNow,
	})

	sameDate := fixedNow().Add(4 * 24 * time.Hour)
	exams := []models.Exam{
		{ID: "exam-b", SubjectID: "math", PaperType: "Paper 1", ExamDate: sameDate, Weight: 30},
		{ID: "exam-a", SubjectID: "math", PaperType: "Paper 2", ExamDate: sameDate, Weight: 30},
	}

	ranked := svc.RankTasks(exams, nil, nil, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "exam-a", ranked[0].ID)
	assert.Equal(t, "exam-b", ranked[1].ID)
}
