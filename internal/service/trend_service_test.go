package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/study-planner-api/internal/models"
)

func attemptsWithResults(subjectID string, results []bool) []models.TaskAttempt {
	attempts := make([]models.TaskAttempt, 0, len(results))
	for _, correct := range results {
		attempts = append(attempts, models.TaskAttempt{
			SubjectID:        subjectID,
			Difficulty:       models.DifficultyMedium,
			Correct:          correct,
			TimeSpentSeconds: 1800,
		})
	}
	return attempts
}

func repeatResults(correct bool, n int) []bool {
	results := make([]bool, n)
	for i := range results {
		results[i] = correct
	}
	return results
}

func TestAnalyzeTrendSparseHistoryIsStable(t *testing.T) {
	svc := NewTrendService()

	analysis := svc.AnalyzeTrend(attemptsWithResults("math", []bool{true, false, true, true}), "math")

	assert.Equal(t, models.TrendStable, analysis.Trend)
	assert.Zero(t, analysis.Slope)
	assert.InDelta(t, 0.5, analysis.RecentSuccessRate, 0.0001)
	assert.InDelta(t, 0.1, analysis.Confidence, 0.0001)
}

func TestAnalyzeTrendImproving(t *testing.T) {
	svc := NewTrendService()
	results := append(repeatResults(false, 5), repeatResults(true, 5)...)

	analysis := svc.AnalyzeTrend(attemptsWithResults("math", results), "math")

	assert.Equal(t, models.TrendImproving, analysis.Trend)
	assert.Greater(t, analysis.Slope, 0.02)
	assert.InDelta(t, 0.5, analysis.RecentSuccessRate, 0.0001)
}

func TestAnalyzeTrendRecentSlumpIsDeclining(t *testing.T) {
	svc := NewTrendService()
	// A long correct streak followed by five misses. Only the last 20
	// attempts enter the regression, so the slump dominates the slope.
	results := append(repeatResults(true, 20), repeatResults(false, 5)...)

	analysis := svc.AnalyzeTrend(attemptsWithResults("math", results), "math")

	assert.Equal(t, models.TrendDeclining, analysis.Trend)
	assert.Less(t, analysis.Slope, -0.02)
	assert.InDelta(t, 0.75, analysis.RecentSuccessRate, 0.0001)
	assert.InDelta(t, 25.0/30.0, analysis.Confidence, 0.0001)
}

func TestAnalyzeTrendConsistentPerformanceIsStable(t *testing.T) {
	svc := NewTrendService()

	analysis := svc.AnalyzeTrend(attemptsWithResults("math", repeatResults(true, 10)), "math")

	assert.Equal(t, models.TrendStable, analysis.Trend)
	assert.InDelta(t, 1.0, analysis.RecentSuccessRate, 0.0001)
}

func TestAnalyzeTrendFiltersBySubject(t *testing.T) {
	svc := NewTrendService()
	history := attemptsWithResults("physics", repeatResults(true, 10))
	history = append(history, attemptsWithResults("math", []bool{true})...)

	analysis := svc.AnalyzeTrend(history, "math")

	assert.InDelta(t, 0.1, analysis.Confidence, 0.0001)
	assert.Equal(t, models.TrendStable, analysis.Trend)
}

func TestPredictExamPerformanceInsufficientData(t *testing.T) {
	svc := NewTrendService()
	exam := &models.Exam{SubjectID: "math"}

	outlook := svc.PredictExamPerformance(exam, attemptsWithResults("math", []bool{true, false}))

	assert.Equal(t, 70, outlook.PredictedGrade)
	assert.InDelta(t, 0.1, outlook.Confidence, 0.0001)
	assert.Equal(t, "insufficient data", outlook.Outlook)
}

func TestPredictExamPerformanceExcellent(t *testing.T) {
	svc := NewTrendService()
	exam := &models.Exam{SubjectID: "math"}
	results := append(repeatResults(true, 9), false)

	outlook := svc.PredictExamPerformance(exam, attemptsWithResults("math", results))

	assert.Equal(t, "excellent", outlook.Outlook)
	assert.GreaterOrEqual(t, outlook.PredictedGrade, 85)
}

func TestPredictExamPerformanceDecliningAdjustsDown(t *testing.T) {
	svc := NewTrendService()
	exam := &models.Exam{SubjectID: "math"}
	// 80% success but clearly declining: grade is 80 - 5 = 75.
	results := append(repeatResults(true, 8), repeatResults(false, 2)...)

	outlook := svc.PredictExamPerformance(exam, attemptsWithResults("math", results))

	assert.Equal(t, 75, outlook.PredictedGrade)
	assert.Equal(t, "good", outlook.Outlook)
}

func TestPredictExamPerformanceUrgentBucket(t *testing.T) {
	svc := NewTrendService()
	exam := &models.Exam{SubjectID: "math"}

	outlook := svc.PredictExamPerformance(exam, attemptsWithResults("math", repeatResults(false, 6)))

	assert.Equal(t, "needs urgent attention", outlook.Outlook)
	assert.Equal(t, 0, outlook.PredictedGrade)
}
