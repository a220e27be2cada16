package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	"github.com/prepdeck/study-planner-api/internal/oracle"
	"github.com/prepdeck/study-planner-api/internal/repository"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/jobs"
)

// wakingHoursPerDay is the assumed ceiling of schedulable hours in one day.
const wakingHoursPerDay = 16.0

// absoluteFloorHoursPerDay is the minimum daily availability regardless of
// how busy the calendar claims to be.
const absoluteFloorHoursPerDay = 2.0

// highCommitmentThreshold is the utilization ratio above which the preview
// carries an advisory.
const highCommitmentThreshold = 0.8

type plannerStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type plannerExamRepo interface {
	FindByID(ctx context.Context, studentID, id string) (*models.Exam, error)
}

type plannerSubjectRepo interface {
	FindByID(ctx context.Context, studentID, id string) (*models.Subject, error)
}

type plannerBusySlotRepo interface {
	ListRecurring(ctx context.Context, studentID string) ([]models.BusySlot, error)
}

type plannerPlanRepo interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudyPlan, error)
	FindByID(ctx context.Context, studentID, id string) (*models.StudyPlan, error)
	Create(ctx context.Context, plan *models.StudyPlan) error
	Update(ctx context.Context, plan *models.StudyPlan) error
}

type plannerSessionRepo interface {
	BulkCreate(ctx context.Context, sessions []models.StudySession) []repository.BulkInsertResult
}

// previewEntry keeps the inputs Confirm needs between calculation and
// confirmation. Entries expire so stale previews cannot be confirmed
// against a changed calendar.
type previewEntry struct {
	examID    string
	daysUntil int
	hours     float64
	expiresAt time.Time
}

type previewStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]previewEntry
}

func newPreviewStore(ttl time.Duration) *previewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &previewStore{ttl: ttl, entries: make(map[string]previewEntry)}
}

func (p *previewStore) put(planID string, entry previewEntry, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry.expiresAt = now.Add(p.ttl)
	p.entries[planID] = entry
	for id, e := range p.entries {
		if now.After(e.expiresAt) {
			delete(p.entries, id)
		}
	}
}

func (p *previewStore) take(planID string, now time.Time) (previewEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[planID]
	if !ok {
		return previewEntry{}, false
	}
	delete(p.entries, planID)
	if now.After(entry.expiresAt) {
		return previewEntry{}, false
	}
	return entry, true
}

// persistSessionsPayload is the queue job carrying a bulk insert. The
// results channel hands per-row outcomes back to the waiting confirmation.
type persistSessionsPayload struct {
	sessions []models.StudySession
	results  chan []repository.BulkInsertResult
}

// PlannerService drives the exam-prep plan state machine:
// calculate -> preview -> generating -> complete, with error reachable from
// any step. Oracle failures degrade to the deterministic fallback and never
// fail a plan; only structural invariant violations do.
type PlannerService struct {
	students  plannerStudentRepo
	exams     plannerExamRepo
	subjects  plannerSubjectRepo
	busySlots plannerBusySlotRepo
	plans     plannerPlanRepo
	sessions  plannerSessionRepo

	estimator oracle.Estimator
	generator oracle.SessionGenerator
	fallback  *oracle.FallbackEstimator

	oracleEnabled bool
	oracleTimeout time.Duration

	previews *previewStore
	queue    *jobs.Queue[persistSessionsPayload]

	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// PlannerServiceParams configures construction.
type PlannerServiceParams struct {
	Students  plannerStudentRepo
	Exams     plannerExamRepo
	Subjects  plannerSubjectRepo
	BusySlots plannerBusySlotRepo
	Plans     plannerPlanRepo
	Sessions  plannerSessionRepo

	Estimator oracle.Estimator
	Generator oracle.SessionGenerator

	OracleEnabled bool
	OracleTimeout time.Duration
	PreviewTTL    time.Duration

	WorkerConcurrency int
	WorkerRetries     int

	Metrics *MetricsService
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewPlannerService constructs the planner and its persistence queue.
func NewPlannerService(params PlannerServiceParams) *PlannerService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.OracleTimeout <= 0 {
		params.OracleTimeout = 20 * time.Second
	}

	s := &PlannerService{
		students:      params.Students,
		exams:         params.Exams,
		subjects:      params.Subjects,
		busySlots:     params.BusySlots,
		plans:         params.Plans,
		sessions:      params.Sessions,
		estimator:     params.Estimator,
		generator:     params.Generator,
		fallback:      oracle.NewFallbackEstimator(),
		oracleEnabled: params.OracleEnabled && params.Estimator != nil,
		oracleTimeout: params.OracleTimeout,
		previews:      newPreviewStore(params.PreviewTTL),
		metrics:       params.Metrics,
		logger:        params.Logger,
		now:           params.Now,
	}

	s.queue = jobs.NewQueue("session-persist", s.handlePersistJob, jobs.QueueConfig{
		Workers:    params.WorkerConcurrency,
		MaxRetries: params.WorkerRetries,
		Logger:     params.Logger,
	})

	return s
}

// Start launches the persistence workers.
func (s *PlannerService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the persistence workers.
func (s *PlannerService) Stop() {
	s.queue.Stop()
}

func (s *PlannerService) handlePersistJob(ctx context.Context, payload persistSessionsPayload) error {
	payload.results <- s.sessions.BulkCreate(ctx, payload.sessions)
	return nil
}

// Calculate runs the calculation step for one exam and transitions the new
// plan into preview. Structural violations persist an error-state plan and
// return a typed error.
func (s *PlannerService) Calculate(ctx context.Context, studentID, examID string) (*dto.PlanPreviewResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	exam, err := s.exams.FindByID(ctx, studentID, examID)
	if err != nil {
		return nil, err
	}

	plan := &models.StudyPlan{
		ID:        uuid.NewString(),
		StudentID: studentID,
		ExamID:    examID,
		Status:    models.PlanStatusCalculate,
	}

	loc := student.Location()
	today := midnight(s.now().In(loc))
	examMidnight := midnight(exam.ExamDate.In(loc))
	daysUntil := int(math.Ceil(examMidnight.Sub(today).Hours() / 24))

	if daysUntil <= 0 {
		return nil, s.failPlan(ctx, plan, appErrors.ErrPastExamDate)
	}

	units := exam.CleanedUnits()
	if len(units) == 0 {
		return nil, s.failPlan(ctx, plan, appErrors.ErrNoUnits)
	}

	slots, err := s.busySlots.ListRecurring(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var weeklyBusyHours float64
	for i := range slots {
		weeklyBusyHours += slots[i].DurationHours()
	}
	availablePerDay := math.Max(wakingHoursPerDay-weeklyBusyHours/7, absoluteFloorHoursPerDay)
	totalAvailable := availablePerDay * float64(daysUntil)

	subjectName := exam.SubjectID
	if subject, err := s.subjects.FindByID(ctx, studentID, exam.SubjectID); err == nil {
		subjectName = subject.Name
	}

	estimate := s.obtainEstimate(ctx, oracle.EstimateRequest{
		Subject:          subjectName,
		PaperType:        exam.PaperType,
		Units:            units,
		DaysUntilExam:    daysUntil,
		AvailableHours:   totalAvailable,
		GradeLevel:       student.GradeLevel,
		EducationSystem:  student.EducationSystem,
		EducationProgram: student.EducationProgram,
	})
	estimate = clampEstimate(estimate, totalAvailable)

	recommended := recommendSessionCount(daysUntil, len(units))
	hoursPerSession := math.Round(estimate.Hours/float64(recommended)*10) / 10

	plan.Status = models.PlanStatusPreview
	plan.DaysUntilExam = daysUntil
	plan.AvailableHoursPerDay = availablePerDay
	plan.TotalAvailableHours = totalAvailable
	plan.EstimatedHoursNeeded = estimate.Hours
	plan.EstimateSource = estimate.Source
	plan.RecommendedSessions = recommended
	plan.HoursPerSession = hoursPerSession
	plan.EstimateReasoning = estimate.Reasoning
	plan.EstimateRecommendation = estimate.Recommendation

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.previews.put(plan.ID, previewEntry{
		examID:    examID,
		daysUntil: daysUntil,
		hours:     estimate.Hours,
	}, s.now())

	utilization := plan.Utilization()
	s.logger.Info("plan calculated",
		zap.String("plan_id", plan.ID),
		zap.String("exam_id", examID),
		zap.Int("days_until", daysUntil),
		zap.Float64("estimated_hours", estimate.Hours),
		zap.String("estimate_source", string(estimate.Source)),
	)

	return &dto.PlanPreviewResponse{
		PlanID:               plan.ID,
		Status:               plan.Status,
		DaysUntilExam:        daysUntil,
		AvailableHoursPerDay: availablePerDay,
		TotalAvailableHours:  totalAvailable,
		EstimatedHoursNeeded: estimate.Hours,
		EstimateSource:       estimate.Source,
		RecommendedSessions:  recommended,
		HoursPerSession:      hoursPerSession,
		Utilization:          utilization,
		HighCommitment:       utilization > highCommitmentThreshold,
		Reasoning:            estimate.Reasoning,
		Recommendation:       estimate.Recommendation,
	}, nil
}

func (s *PlannerService) failPlan(ctx context.Context, plan *models.StudyPlan, cause *appErrors.Error) error {
	plan.Status = models.PlanStatusError
	plan.ErrorMessage = cause.Message
	if err := s.plans.Create(ctx, plan); err != nil {
		s.logger.Error("failed to persist error-state plan", zap.String("plan_id", plan.ID), zap.Error(err))
	}
	return cause
}

// obtainEstimate tries the external service and degrades to the
// deterministic fallback on any failure. The fallback cannot fail.
func (s *PlannerService) obtainEstimate(ctx context.Context, req oracle.EstimateRequest) oracle.Estimate {
	if s.oracleEnabled {
		callCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
		start := time.Now()
		estimate, err := s.estimator.EstimateExamPrep(callCtx, req)
		cancel()
		if s.metrics != nil {
			s.metrics.ObserveOracleCall("estimate", err, time.Since(start))
		}
		if err == nil {
			return estimate
		}
		s.logger.Warn("oracle estimation failed, using fallback",
			zap.String("subject", req.Subject),
			zap.Error(err),
		)
	}

	estimate, _ := s.fallback.EstimateExamPrep(ctx, req)
	return estimate
}

// clampEstimate bounds the hours into [2, availableHours*0.8], or [2, 200]
// when availability is unknown, rewriting the recommendation when the clamp
// fires so the UI can explain the adjustment.
func clampEstimate(estimate oracle.Estimate, availableHours float64) oracle.Estimate {
	upper := 200.0
	if availableHours > 0 {
		upper = availableHours * 0.8
	}
	if upper < 2 {
		upper = 2
	}

	switch {
	case estimate.Hours < 2:
		estimate.Hours = 2
		estimate.Recommendation = "Estimate raised to the 2-hour minimum; even well-prepared exams deserve a final review."
	case estimate.Hours > upper:
		estimate.Hours = math.Round(upper*10) / 10
		estimate.Recommendation = fmt.Sprintf(
			"Estimate reduced to %.1f hours to fit within 80%% of your available study time; prioritise your weakest units.",
			estimate.Hours,
		)
	}
	return estimate
}

// Confirm transitions a previewed plan through generating and persists the
// distributed sessions. Partial persistence is surfaced, not rolled back;
// total persistence failure returns the plan to preview for retry.
func (s *PlannerService) Confirm(ctx context.Context, studentID, planID string) (*dto.ConfirmPlanResponse, error) {
	entry, ok := s.previews.take(planID, s.now())
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPlanState, "plan preview has expired; recalculate to continue")
	}

	// Transient lookup failures must not consume the preview; the caller
	// retries the confirmation with the same entry.
	plan, err := s.plans.FindByID(ctx, studentID, planID)
	if err != nil {
		s.previews.put(planID, entry, s.now())
		return nil, err
	}
	if plan.Status != models.PlanStatusPreview {
		return nil, appErrors.ErrPlanState
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		s.previews.put(planID, entry, s.now())
		return nil, err
	}
	exam, err := s.exams.FindByID(ctx, studentID, entry.examID)
	if err != nil {
		s.previews.put(planID, entry, s.now())
		return nil, err
	}

	plan.Status = models.PlanStatusGenerating
	if err := s.plans.Update(ctx, plan); err != nil {
		s.previews.put(planID, entry, s.now())
		return nil, err
	}

	planned := distributeSessions(entry.hours, entry.daysUntil)
	topics := s.obtainTopics(ctx, exam, len(planned)-1)

	loc := student.Location()
	today := midnight(s.now().In(loc))

	toPersist := make([]models.StudySession, 0, len(planned))
	for i, session := range planned {
		topic := "Final review"
		if !session.Review {
			topic = topics[i%len(topics)]
		}
		toPersist = append(toPersist, models.StudySession{
			StudentID:       studentID,
			SubjectID:       exam.SubjectID,
			PlanID:          plan.ID,
			Topic:           topic,
			Difficulty:      session.Difficulty,
			ScheduledDate:   today.AddDate(0, 0, session.DayOffset),
			TimeOfDay:       session.TimeOfDay,
			DurationMinutes: session.DurationMinutes,
			Status:          models.SessionStatusPending,
		})
	}

	outcomes, err := s.persistSessions(ctx, toPersist)
	if err != nil {
		// An interrupted (or cancelled) persistence run must not strand the
		// plan in generating: return it to preview so confirm can be retried.
		// Inserts already issued to the workers are left to complete.
		plan.Status = models.PlanStatusPreview
		plan.ErrorMessage = "session persistence interrupted; confirm again to retry"
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if uerr := s.plans.Update(restoreCtx, plan); uerr != nil {
			s.logger.Error("failed to return plan to preview", zap.String("plan_id", plan.ID), zap.Error(uerr))
		}
		s.previews.put(plan.ID, entry, s.now())
		return nil, err
	}

	results := make([]dto.SessionResult, len(toPersist))
	persisted := 0
	for i := range toPersist {
		results[i] = dto.SessionResult{
			Topic:           toPersist[i].Topic,
			Difficulty:      toPersist[i].Difficulty,
			ScheduledDate:   toPersist[i].ScheduledDate.Format("2006-01-02"),
			TimeOfDay:       toPersist[i].TimeOfDay,
			DurationMinutes: toPersist[i].DurationMinutes,
		}
	}
	for _, outcome := range outcomes {
		if outcome.Index < 0 || outcome.Index >= len(results) {
			continue
		}
		if outcome.Err != nil {
			results[outcome.Index].Error = outcome.Err.Error()
			continue
		}
		results[outcome.Index].SessionID = outcome.SessionID
		results[outcome.Index].Persisted = true
		persisted++
	}

	if persisted == 0 {
		plan.Status = models.PlanStatusPreview
		plan.ErrorMessage = "session persistence failed; confirm again to retry"
		if err := s.plans.Update(ctx, plan); err != nil {
			s.logger.Error("failed to return plan to preview", zap.String("plan_id", plan.ID), zap.Error(err))
		}
		s.previews.put(plan.ID, entry, s.now())
		return nil, appErrors.Clone(appErrors.ErrInternal, "no sessions could be persisted")
	}

	partial := persisted < len(toPersist)
	plan.Status = models.PlanStatusComplete
	plan.ErrorMessage = ""
	plan.Summary = fmt.Sprintf("%d study sessions over %d days, covering %.1f hours of preparation.",
		persisted, entry.daysUntil, entry.hours)
	if partial {
		plan.Summary = fmt.Sprintf("%s %d of %d sessions could not be saved.",
			plan.Summary, len(toPersist)-persisted, len(toPersist))
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("plan confirmed",
		zap.String("plan_id", plan.ID),
		zap.Int("sessions_persisted", persisted),
		zap.Int("sessions_total", len(toPersist)),
		zap.Bool("partial", partial),
	)

	return &dto.ConfirmPlanResponse{
		PlanID:   plan.ID,
		Status:   plan.Status,
		Sessions: results,
		Partial:  partial,
		Summary:  plan.Summary,
	}, nil
}

// persistSessions hands the bulk insert to the worker queue and waits for
// the per-row outcomes.
func (s *PlannerService) persistSessions(ctx context.Context, sessions []models.StudySession) ([]repository.BulkInsertResult, error) {
	resultCh := make(chan []repository.BulkInsertResult, 1)
	if err := s.queue.Enqueue(persistSessionsPayload{sessions: sessions, results: resultCh}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session persistence unavailable")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case outcomes := <-resultCh:
		return outcomes, nil
	}
}

// obtainTopics asks the generation service for session topics and falls back
// to cycling the exam's units. The returned slice is never empty.
func (s *PlannerService) obtainTopics(ctx context.Context, exam *models.Exam, sessionCount int) []string {
	units := exam.CleanedUnits()

	req := oracle.GenerateRequest{
		Subject:      exam.SubjectID,
		PaperType:    exam.PaperType,
		Units:        units,
		SessionCount: sessionCount,
	}

	var events []oracle.ScheduleEvent
	if s.oracleEnabled && s.generator != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
		start := time.Now()
		generated, err := s.generator.GenerateSessions(callCtx, req)
		cancel()
		if s.metrics != nil {
			s.metrics.ObserveOracleCall("generate", err, time.Since(start))
		}
		if err != nil {
			s.logger.Warn("oracle session generation failed, using fallback",
				zap.String("exam_id", exam.ID),
				zap.Error(err),
			)
		} else {
			events = generated
		}
	}
	if events == nil {
		events, _ = s.fallback.GenerateSessions(ctx, req)
	}

	topics := make([]string, 0, sessionCount)
	for _, draft := range oracle.Drafts(events) {
		topics = append(topics, draft.Topic)
	}
	if len(topics) == 0 {
		if len(units) > 0 {
			topics = units
		} else {
			topics = []string{"General review"}
		}
	}
	return topics
}

// GetPlan returns one plan scoped to the student.
func (s *PlannerService) GetPlan(ctx context.Context, studentID, planID string) (*models.StudyPlan, error) {
	return s.plans.FindByID(ctx, studentID, planID)
}

// ListPlans returns the student's plans, newest first.
func (s *PlannerService) ListPlans(ctx context.Context, studentID string) ([]models.StudyPlan, error) {
	return s.plans.ListByStudent(ctx, studentID)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
