package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/models"
)

type insightsExamRepo interface {
	FindByID(ctx context.Context, studentID, id string) (*models.Exam, error)
	ListUpcoming(ctx context.Context, studentID string, from time.Time) ([]models.Exam, error)
}

type insightsAssignmentRepo interface {
	ListOpen(ctx context.Context, studentID string) ([]models.Assignment, error)
}

type insightsAttemptRepo interface {
	List(ctx context.Context, studentID string, filter models.AttemptFilter) ([]models.TaskAttempt, error)
}

type insightsSessionRepo interface {
	ListRecent(ctx context.Context, studentID string, limit int) ([]models.StudySession, error)
	TotalMinutesBySubject(ctx context.Context, studentID, subjectID string) (int, error)
}

type insightsSubjectRepo interface {
	List(ctx context.Context, studentID string, filter models.SubjectFilter) ([]models.Subject, int, error)
}

// InsightsService exposes the individual analytic components over fetched
// history, one operation per endpoint.
type InsightsService struct {
	exams       insightsExamRepo
	assignments insightsAssignmentRepo
	attempts    insightsAttemptRepo
	sessions    insightsSessionRepo
	subjects    insightsSubjectRepo

	estimator *EstimatorService
	trend     *TrendService
	priority  *PriorityService
	optimizer *OptimizerService

	logger *zap.Logger
	now    func() time.Time
}

// InsightsServiceParams configures construction.
type InsightsServiceParams struct {
	Exams       insightsExamRepo
	Assignments insightsAssignmentRepo
	Attempts    insightsAttemptRepo
	Sessions    insightsSessionRepo
	Subjects    insightsSubjectRepo

	Estimator *EstimatorService
	Trend     *TrendService
	Priority  *PriorityService
	Optimizer *OptimizerService

	Logger *zap.Logger
	Now    func() time.Time
}

// NewInsightsService constructs the service.
func NewInsightsService(params InsightsServiceParams) *InsightsService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &InsightsService{
		exams:       params.Exams,
		assignments: params.Assignments,
		attempts:    params.Attempts,
		sessions:    params.Sessions,
		subjects:    params.Subjects,
		estimator:   params.Estimator,
		trend:       params.Trend,
		priority:    params.Priority,
		optimizer:   params.Optimizer,
		logger:      params.Logger,
		now:         params.Now,
	}
}

// PredictTaskTime estimates minutes for a task in the given subject and
// difficulty, blended with the caller-supplied baseline.
func (s *InsightsService) PredictTaskTime(ctx context.Context, studentID, subjectID string, difficulty models.Difficulty, baseEstimate int) (models.TimeEstimate, error) {
	attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{SubjectID: subjectID})
	if err != nil {
		return models.TimeEstimate{}, err
	}
	return s.estimator.PredictTaskTime(baseEstimate, subjectID, difficulty, attempts), nil
}

// PredictExamPrep estimates total preparation hours for an exam.
func (s *InsightsService) PredictExamPrep(ctx context.Context, studentID, examID string) (models.ExamPrepEstimate, error) {
	exam, err := s.exams.FindByID(ctx, studentID, examID)
	if err != nil {
		return models.ExamPrepEstimate{}, err
	}
	attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{SubjectID: exam.SubjectID})
	if err != nil {
		return models.ExamPrepEstimate{}, err
	}
	return s.estimator.PredictExamPrepTime(exam, attempts), nil
}

// SubjectTrend classifies recent performance for one subject. An empty
// subjectID analyzes all attempts together.
func (s *InsightsService) SubjectTrend(ctx context.Context, studentID, subjectID string) (models.TrendAnalysis, error) {
	attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{SubjectID: subjectID})
	if err != nil {
		return models.TrendAnalysis{}, err
	}
	return s.trend.AnalyzeTrend(attempts, subjectID), nil
}

// ExamOutlook projects a grade for one exam.
func (s *InsightsService) ExamOutlook(ctx context.Context, studentID, examID string) (models.ExamOutlook, error) {
	exam, err := s.exams.FindByID(ctx, studentID, examID)
	if err != nil {
		return models.ExamOutlook{}, err
	}
	attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{SubjectID: exam.SubjectID})
	if err != nil {
		return models.ExamOutlook{}, err
	}
	return s.trend.PredictExamPerformance(exam, attempts), nil
}

// RankTasks scores and orders all upcoming exams and open assignments.
func (s *InsightsService) RankTasks(ctx context.Context, studentID string) ([]models.RankedTask, error) {
	exams, err := s.exams.ListUpcoming(ctx, studentID, s.now())
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListOpen(ctx, studentID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{})
	if err != nil {
		return nil, err
	}

	loggedMinutes := make(map[string]int, len(exams))
	for i := range exams {
		subjectID := exams[i].SubjectID
		if _, ok := loggedMinutes[subjectID]; ok {
			continue
		}
		minutes, err := s.sessions.TotalMinutesBySubject(ctx, studentID, subjectID)
		if err != nil {
			s.logger.Warn("failed to sum logged minutes",
				zap.String("subject_id", subjectID), zap.Error(err))
			continue
		}
		loggedMinutes[subjectID] = minutes
	}

	return s.priority.RankTasks(exams, assignments, attempts, loggedMinutes), nil
}

// SuggestSession recommends the next study session.
func (s *InsightsService) SuggestSession(ctx context.Context, studentID string) (models.SessionSuggestion, error) {
	attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{})
	if err != nil {
		return models.SessionSuggestion{}, err
	}
	sessions, err := s.sessions.ListRecent(ctx, studentID, 5)
	if err != nil {
		return models.SessionSuggestion{}, err
	}
	exams, err := s.exams.ListUpcoming(ctx, studentID, s.now())
	if err != nil {
		return models.SessionSuggestion{}, err
	}
	subjects, _, err := s.subjects.List(ctx, studentID, models.SubjectFilter{})
	if err != nil {
		return models.SessionSuggestion{}, err
	}

	return s.optimizer.SuggestNextSession(SuggestSessionParams{
		History:  attempts,
		Sessions: sessions,
		Exams:    exams,
		Subjects: subjects,
	}), nil
}
