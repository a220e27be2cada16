package service

import (
	"math"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// TrendService classifies recent performance movement from task-attempt
// history. Like the estimator it is stateless and operates on supplied data.
type TrendService struct{}

// NewTrendService constructs the trend analyzer.
func NewTrendService() *TrendService {
	return &TrendService{}
}

const (
	trendHistoryMinimum = 5
	trendWindow         = 20
	// Slopes this small are indistinguishable from noise and reported
	// as stable.
	trendSlopeThreshold = 0.02
)

// AnalyzeTrend fits an ordinary least-squares line through recent attempt
// correctness and classifies the slope. An empty subjectID analyzes all
// subjects together.
func (s *TrendService) AnalyzeTrend(history []models.TaskAttempt, subjectID string) models.TrendAnalysis {
	matching := history
	if subjectID != "" {
		matching = make([]models.TaskAttempt, 0, len(history))
		for _, attempt := range history {
			if attempt.SubjectID == subjectID {
				matching = append(matching, attempt)
			}
		}
	}

	if len(matching) < trendHistoryMinimum {
		return models.TrendAnalysis{
			Trend:             models.TrendStable,
			Slope:             0,
			RecentSuccessRate: 0.5,
			Confidence:        0.1,
		}
	}

	window := matching
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}

	n := float64(len(window))
	var sumX, sumY, sumXY, sumXX float64
	for i, attempt := range window {
		x := float64(i)
		y := 0.0
		if attempt.Correct {
			y = 1.0
		}
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	var slope float64
	denominator := n*sumXX - sumX*sumX
	if denominator != 0 {
		slope = (n*sumXY - sumX*sumY) / denominator
	}

	trend := models.TrendStable
	switch {
	case slope > trendSlopeThreshold:
		trend = models.TrendImproving
	case slope < -trendSlopeThreshold:
		trend = models.TrendDeclining
	}

	return models.TrendAnalysis{
		Trend:             trend,
		Slope:             slope,
		RecentSuccessRate: sumY / n,
		Confidence:        math.Min(float64(len(matching))/30.0, 0.9),
	}
}

// PredictExamPerformance projects an exam grade from the subject's trend.
func (s *TrendService) PredictExamPerformance(exam *models.Exam, history []models.TaskAttempt) models.ExamOutlook {
	matching := make([]models.TaskAttempt, 0, len(history))
	for _, attempt := range history {
		if attempt.SubjectID == exam.SubjectID {
			matching = append(matching, attempt)
		}
	}

	if len(matching) < 3 {
		return models.ExamOutlook{
			PredictedGrade: 70,
			Confidence:     0.1,
			Outlook:        "insufficient data",
		}
	}

	analysis := s.AnalyzeTrend(matching, "")
	grade := analysis.RecentSuccessRate * 100
	switch analysis.Trend {
	case models.TrendImproving:
		grade += 5
	case models.TrendDeclining:
		grade -= 5
	}

	predicted := int(math.Round(grade))

	var outlook string
	switch {
	case predicted >= 85:
		outlook = "excellent"
	case predicted >= 75:
		outlook = "good"
	case predicted >= 65:
		outlook = "concerning"
	default:
		outlook = "needs urgent attention"
	}

	return models.ExamOutlook{
		PredictedGrade: predicted,
		Confidence:     analysis.Confidence,
		Outlook:        outlook,
	}
}
