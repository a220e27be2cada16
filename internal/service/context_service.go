package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
)

type contextStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type contextSubjectRepo interface {
	List(ctx context.Context, studentID string, filter models.SubjectFilter) ([]models.Subject, int, error)
}

type contextExamRepo interface {
	ListUpcoming(ctx context.Context, studentID string, from time.Time) ([]models.Exam, error)
}

type contextAssignmentRepo interface {
	ListOpen(ctx context.Context, studentID string) ([]models.Assignment, error)
}

type contextAttemptRepo interface {
	List(ctx context.Context, studentID string, filter models.AttemptFilter) ([]models.TaskAttempt, error)
}

type contextSessionRepo interface {
	ListRecent(ctx context.Context, studentID string, limit int) ([]models.StudySession, error)
	TotalMinutesBySubject(ctx context.Context, studentID, subjectID string) (int, error)
}

type contextGoalRepo interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Goal, error)
}

// ContextService assembles the ranked, annotated study context consumed by
// the dashboard and the assistant prompt. Raw data is fetched concurrently;
// the analytic passes run on the assembled snapshot.
type ContextService struct {
	students    contextStudentRepo
	subjects    contextSubjectRepo
	exams       contextExamRepo
	assignments contextAssignmentRepo
	attempts    contextAttemptRepo
	sessions    contextSessionRepo
	goals       contextGoalRepo

	trend     *TrendService
	priority  *PriorityService
	optimizer *OptimizerService

	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// ContextServiceParams configures construction.
type ContextServiceParams struct {
	Students    contextStudentRepo
	Subjects    contextSubjectRepo
	Exams       contextExamRepo
	Assignments contextAssignmentRepo
	Attempts    contextAttemptRepo
	Sessions    contextSessionRepo
	Goals       contextGoalRepo

	Trend     *TrendService
	Priority  *PriorityService
	Optimizer *OptimizerService

	Cache    *CacheService
	CacheTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewContextService constructs the aggregator.
func NewContextService(params ContextServiceParams) *ContextService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = 5 * time.Minute
	}
	return &ContextService{
		students:    params.Students,
		subjects:    params.Subjects,
		exams:       params.Exams,
		assignments: params.Assignments,
		attempts:    params.Attempts,
		sessions:    params.Sessions,
		goals:       params.Goals,
		trend:       params.Trend,
		priority:    params.Priority,
		optimizer:   params.Optimizer,
		cache:       params.Cache,
		cacheTTL:    params.CacheTTL,
		logger:      params.Logger,
		now:         params.Now,
	}
}

// BuildContext assembles the full study context for one student.
func (s *ContextService) BuildContext(ctx context.Context, studentID string) (*dto.StudyContext, error) {
	var cached dto.StudyContext
	if hit, _ := s.cache.Get(ctx, StudentContextKey(studentID), &cached); hit {
		return &cached, nil
	}

	snapshot, err := s.fetchSnapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}

	loggedMinutes := make(map[string]int, len(snapshot.exams))
	for i := range snapshot.exams {
		subjectID := snapshot.exams[i].SubjectID
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

	ranked := s.priority.RankTasks(snapshot.exams, snapshot.assignments, snapshot.attempts, loggedMinutes)

	examsBySubject := make(map[string]*models.Exam, len(snapshot.exams))
	for i := range snapshot.exams {
		if _, ok := examsBySubject[snapshot.exams[i].SubjectID]; !ok {
			examsBySubject[snapshot.exams[i].SubjectID] = &snapshot.exams[i]
		}
	}

	trends := make([]dto.SubjectTrend, 0, len(snapshot.subjects))
	for _, subject := range snapshot.subjects {
		entry := dto.SubjectTrend{
			SubjectID:   subject.ID,
			SubjectName: subject.Name,
			Trend:       s.trend.AnalyzeTrend(snapshot.attempts, subject.ID),
		}
		if exam, ok := examsBySubject[subject.ID]; ok {
			outlook := s.trend.PredictExamPerformance(exam, snapshot.attempts)
			entry.Outlook = &outlook
		}
		trends = append(trends, entry)
	}

	suggestion := s.optimizer.SuggestNextSession(SuggestSessionParams{
		History:  snapshot.attempts,
		Sessions: snapshot.sessions,
		Exams:    snapshot.exams,
		Subjects: snapshot.subjects,
	})

	result := &dto.StudyContext{
		StudentID:   studentID,
		DisplayName: snapshot.student.DisplayName,
		GradeLevel:  snapshot.student.GradeLevel,
		Ranked:      ranked,
		Trends:      trends,
		Suggestion:  suggestion,
		Goals:       snapshot.goals,
		GeneratedAt: s.now().UTC(),
	}

	if err := s.cache.Set(ctx, StudentContextKey(studentID), result, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache study context", zap.String("student_id", studentID), zap.Error(err))
	}

	return result, nil
}

// Invalidate drops the cached context after writes to any source data.
func (s *ContextService) Invalidate(ctx context.Context, studentID string) {
	if err := s.cache.InvalidateStudent(ctx, studentID); err != nil {
		s.logger.Warn("failed to invalidate study context", zap.String("student_id", studentID), zap.Error(err))
	}
}

type contextSnapshot struct {
	student     *models.Student
	subjects    []models.Subject
	exams       []models.Exam
	assignments []models.Assignment
	attempts    []models.TaskAttempt
	sessions    []models.StudySession
	goals       []models.Goal
}

// fetchSnapshot pulls all raw inputs concurrently. The queries are
// independent; the first error wins.
func (s *ContextService) fetchSnapshot(ctx context.Context, studentID string) (*contextSnapshot, error) {
	snapshot := &contextSnapshot{}
	now := s.now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	capture := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(7)
	go func() {
		defer wg.Done()
		student, err := s.students.FindByID(ctx, studentID)
		capture(err)
		snapshot.student = student
	}()
	go func() {
		defer wg.Done()
		subjects, _, err := s.subjects.List(ctx, studentID, models.SubjectFilter{})
		capture(err)
		snapshot.subjects = subjects
	}()
	go func() {
		defer wg.Done()
		exams, err := s.exams.ListUpcoming(ctx, studentID, now)
		capture(err)
		snapshot.exams = exams
	}()
	go func() {
		defer wg.Done()
		assignments, err := s.assignments.ListOpen(ctx, studentID)
		capture(err)
		snapshot.assignments = assignments
	}()
	go func() {
		defer wg.Done()
		attempts, err := s.attempts.List(ctx, studentID, models.AttemptFilter{})
		capture(err)
		snapshot.attempts = attempts
	}()
	go func() {
		defer wg.Done()
		sessions, err := s.sessions.ListRecent(ctx, studentID, 20)
		capture(err)
		snapshot.sessions = sessions
	}()
	go func() {
		defer wg.Done()
		goals, err := s.goals.ListByStudent(ctx, studentID)
		capture(err)
		snapshot.goals = goals
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return snapshot, nil
}

// FlattenContext renders the context as plain text for prompt assembly.
func (s *ContextService) FlattenContext(sc *dto.StudyContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Study context for %s (grade %s), generated %s.\n",
		sc.DisplayName, sc.GradeLevel, sc.GeneratedAt.Format(time.RFC3339))

	if len(sc.Ranked) > 0 {
		b.WriteString("\nPriorities:\n")
		for i, task := range sc.Ranked {
			fmt.Fprintf(&b, "%d. [%s] %s — score %d, due %s\n",
				i+1, task.Kind, task.Title, task.Score, task.Deadline)
		}
	}

	if len(sc.Trends) > 0 {
		b.WriteString("\nSubject trends:\n")
		for _, trend := range sc.Trends {
			fmt.Fprintf(&b, "- %s: %s (recent success %.0f%%, confidence %.2f)",
				trend.SubjectName, trend.Trend.Trend, trend.Trend.RecentSuccessRate*100, trend.Trend.Confidence)
			if trend.Outlook != nil {
				fmt.Fprintf(&b, "; predicted grade %d (%s)", trend.Outlook.PredictedGrade, trend.Outlook.Outlook)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nNext session: %d minutes on %s (%s).\n",
		sc.Suggestion.RecommendedDuration, sc.Suggestion.SuggestedSubject, sc.Suggestion.Reasoning)
	if len(sc.Suggestion.SuggestedTopics) > 0 {
		fmt.Fprintf(&b, "Focus topics: %s.\n", strings.Join(sc.Suggestion.SuggestedTopics, ", "))
	}

	if len(sc.Goals) > 0 {
		b.WriteString("\nGoals:\n")
		for _, goal := range sc.Goals {
			fmt.Fprintf(&b, "- %s (%.0f%% complete, target %s)\n",
				goal.Title, goal.ProgressPercent, goal.TargetDate.Format("2006-01-02"))
		}
	}

	return b.String()
}
