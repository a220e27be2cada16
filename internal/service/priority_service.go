package service

import (
	"math"
	"sort"
	"time"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// prepTimeEstimator supplies the hours-needed estimate used by the
// preparation-gap factor.
type prepTimeEstimator interface {
	PredictExamPrepTime(exam *models.Exam, history []models.TaskAttempt) models.ExamPrepEstimate
}

// PriorityService scores exams and assignments on a 0-100 scale and produces
// a combined ranking. Every score carries its factor breakdown so the UI can
// explain the ordering.
type PriorityService struct {
	estimator prepTimeEstimator
	now       func() time.Time
}

// PriorityServiceParams configures construction.
type PriorityServiceParams struct {
	Estimator prepTimeEstimator
	Now       func() time.Time
}

// NewPriorityService constructs the scorer.
func NewPriorityService(params PriorityServiceParams) *PriorityService {
	if params.Now == nil {
		params.Now = time.Now
	}
	return &PriorityService{estimator: params.Estimator, now: params.Now}
}

// examUrgency is a step function over days until the exam. The discrete
// buckets keep scores visually distinguishable in ranked lists.
func examUrgency(daysUntil float64) float64 {
	switch {
	case daysUntil < 1:
		return 40
	case daysUntil < 3:
		return 35
	case daysUntil < 7:
		return 30
	case daysUntil < 14:
		return 20
	case daysUntil < 30:
		return 10
	default:
		return 0
	}
}

// assignmentUrgency steps over hours until due. Assignments never score
// zero urgency; anything with a due date is at least somewhat actionable.
func assignmentUrgency(hoursUntil float64) float64 {
	switch {
	case hoursUntil < 6:
		return 40
	case hoursUntil < 24:
		return 35
	case hoursUntil < 72:
		return 30
	case hoursUntil < 168:
		return 20
	default:
		return 10
	}
}

// ScoreExam combines urgency, exam weight, and the preparation gap between
// hours needed and minutes already logged for the subject.
func (s *PriorityService) ScoreExam(exam *models.Exam, history []models.TaskAttempt, loggedMinutes int) models.PriorityScore {
	daysUntil := exam.ExamDate.Sub(s.now()).Hours() / 24

	urgency := examUrgency(daysUntil)
	weight := (exam.Weight / 100) * 30

	needed := s.estimator.PredictExamPrepTime(exam, history).Hours
	gap := math.Max(0, (needed*60-float64(loggedMinutes))/60*5)
	gap = clampFloat(gap, 0, 30)

	total := clampFloat(urgency+weight+gap, 0, 100)

	return models.PriorityScore{
		Score: int(math.Round(total)),
		Factors: models.PriorityFactors{
			Urgency: urgency,
			Weight:  weight,
			PrepGap: gap,
		},
	}
}

// ScoreAssignment combines urgency, remaining completion, and effort.
func (s *PriorityService) ScoreAssignment(assignment *models.Assignment) models.PriorityScore {
	hoursUntil := assignment.DueDate.Sub(s.now()).Hours()

	urgency := assignmentUrgency(hoursUntil)
	completion := (1 - assignment.CompletionPercent/100) * 30

	estimatedHours := assignment.EstimatedHours
	if estimatedHours <= 0 {
		estimatedHours = 2
	}
	effort := math.Min(30, estimatedHours*5)

	total := clampFloat(urgency+completion+effort, 0, 100)

	return models.PriorityScore{
		Score: int(math.Round(total)),
		Factors: models.PriorityFactors{
			Urgency:    urgency,
			Completion: completion,
			Effort:     effort,
		},
	}
}

// RankTasks scores every exam and assignment and sorts the combined list by
// score descending. Equal scores order by nearest deadline, then by id, so
// the ranking is deterministic across runs.
func (s *PriorityService) RankTasks(exams []models.Exam, assignments []models.Assignment, history []models.TaskAttempt, loggedMinutesBySubject map[string]int) []models.RankedTask {
	ranked := make([]models.RankedTask, 0, len(exams)+len(assignments))
	deadlines := make(map[string]time.Time, len(exams)+len(assignments))

	for i := range exams {
		exam := &exams[i]
		score := s.ScoreExam(exam, history, loggedMinutesBySubject[exam.SubjectID])
		ranked = append(ranked, models.RankedTask{
			Kind:     models.TaskKindExam,
			ID:       exam.ID,
			Title:    exam.PaperType,
			Deadline: exam.ExamDate.Format(time.RFC3339),
			Score:    score.Score,
			Factors:  score.Factors,
		})
		deadlines[exam.ID] = exam.ExamDate
	}

	for i := range assignments {
		assignment := &assignments[i]
		score := s.ScoreAssignment(assignment)
		ranked = append(ranked, models.RankedTask{
			Kind:     models.TaskKindAssignment,
			ID:       assignment.ID,
			Title:    assignment.Title,
			Deadline: assignment.DueDate.Format(time.RFC3339),
			Score:    score.Score,
			Factors:  score.Factors,
		})
		deadlines[assignment.ID] = assignment.DueDate
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		di, dj := deadlines[ranked[i].ID], deadlines[ranked[j].ID]
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
