package service

import (
	"math"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// EstimatorService models how long tasks and exam preparation will take for
// one student, blending observed attempt history with supplied baselines.
// It is stateless; callers fetch history and pass it in.
type EstimatorService struct{}

// NewEstimatorService constructs the estimator.
func NewEstimatorService() *EstimatorService {
	return &EstimatorService{}
}

const (
	taskHistoryWindow    = 10
	prepHistoryMinimum   = 5
	taskHistoryMinimum   = 2
	taskConfidenceCap    = 0.9
	prepConfidenceCap    = 0.8
	sparseTaskConfidence = 0.3
	sparsePrepConfidence = 0.2
)

// PredictTaskTime estimates minutes for a task of the given subject and
// difficulty. With little matching history it regresses to the supplied
// baseline at low confidence; as history accumulates the weighted average of
// observed durations dominates.
func (s *EstimatorService) PredictTaskTime(baseEstimate int, subjectID string, difficulty models.Difficulty, history []models.TaskAttempt) models.TimeEstimate {
	matching := make([]models.TaskAttempt, 0, len(history))
	for _, attempt := range history {
		if attempt.SubjectID == subjectID && attempt.Difficulty == difficulty {
			matching = append(matching, attempt)
		}
	}

	if len(matching) < taskHistoryMinimum {
		return models.TimeEstimate{Minutes: baseEstimate, Confidence: sparseTaskConfidence}
	}

	// Most recent window, kept oldest-first so the exponential weight
	// favours recency.
	window := matching
	if len(window) > taskHistoryWindow {
		window = window[len(window)-taskHistoryWindow:]
	}

	var weightedSum, weightTotal float64
	for i, attempt := range window {
		w := math.Exp(float64(i) / 5.0)
		weightedSum += attempt.MinutesSpent() * w
		weightTotal += w
	}
	weightedAvg := weightedSum / weightTotal

	confidence := math.Min(float64(len(matching))/10.0, taskConfidenceCap)
	blended := weightedAvg*confidence + float64(baseEstimate)*(1-confidence)

	return models.TimeEstimate{
		Minutes:    int(math.Round(blended)),
		Confidence: confidence,
	}
}

// PredictExamPrepTime estimates total preparation hours for an exam from the
// student's attempt history in that subject. Weaker recent performance
// inflates the estimate through the difficulty multiplier.
func (s *EstimatorService) PredictExamPrepTime(exam *models.Exam, history []models.TaskAttempt) models.ExamPrepEstimate {
	matching := make([]models.TaskAttempt, 0, len(history))
	for _, attempt := range history {
		if attempt.SubjectID == exam.SubjectID {
			matching = append(matching, attempt)
		}
	}

	if len(matching) < prepHistoryMinimum {
		return models.ExamPrepEstimate{
			Hours:      exam.Weight * 0.2,
			Confidence: sparsePrepConfidence,
		}
	}

	correct := 0
	for _, attempt := range matching {
		if attempt.Correct {
			correct++
		}
	}
	successRate := float64(correct) / float64(len(matching))

	// The +0.2 offset keeps the multiplier finite at 0% success.
	difficultyMultiplier := 1.0 / (successRate + 0.2)
	baseHours := exam.Weight * 0.15
	hours := math.Round(baseHours*difficultyMultiplier*10) / 10

	return models.ExamPrepEstimate{
		Hours:      hours,
		Confidence: math.Min(float64(len(matching))/20.0, prepConfidenceCap),
	}
}
