package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/study-planner-api/internal/models"
	"github.com/prepdeck/study-planner-api/internal/oracle"
	"github.com/prepdeck/study-planner-api/internal/repository"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

func plannerNow() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

type plannerFakeStudents struct {
	student *models.Student
}

func (f *plannerFakeStudents) FindByID(context.Context, string) (*models.Student, error) {
	return f.student, nil
}

type plannerFakeExams struct {
	exam *models.Exam
}

func (f *plannerFakeExams) FindByID(context.Context, string, string) (*models.Exam, error) {
	return f.exam, nil
}

type plannerFakeSubjects struct {
	subject *models.Subject
}

func (f *plannerFakeSubjects) FindByID(context.Context, string, string) (*models.Subject, error) {
	if f.subject == nil {
		return nil, errors.New("not found")
	}
	return f.subject, nil
}

type plannerFakeBusySlots struct {
	slots []models.BusySlot
}

func (f *plannerFakeBusySlots) ListRecurring(context.Context, string) ([]models.BusySlot, error) {
	return f.slots, nil
}

type plannerFakePlans struct {
	created []*models.StudyPlan
	updated []*models.StudyPlan
	plans   map[string]*models.StudyPlan
	findErr error
}

func newPlannerFakePlans() *plannerFakePlans {
	return &plannerFakePlans{plans: map[string]*models.StudyPlan{}}
}

func (f *plannerFakePlans) ListByStudent(context.Context, string) ([]models.StudyPlan, error) {
	out := make([]models.StudyPlan, 0, len(f.plans))
	for _, plan := range f.plans {
		out = append(out, *plan)
	}
	return out, nil
}

func (f *plannerFakePlans) FindByID(_ context.Context, _, id string) (*models.StudyPlan, error) {
	if f.findErr != nil {
		err := f.findErr
		f.findErr = nil
		return nil, err
	}
	plan, ok := f.plans[id]
	if !ok {
		return nil, errors.New("plan not found")
	}
	clone := *plan
	return &clone, nil
}

func (f *plannerFakePlans) Create(_ context.Context, plan *models.StudyPlan) error {
	clone := *plan
	f.created = append(f.created, &clone)
	f.plans[plan.ID] = &clone
	return nil
}

func (f *plannerFakePlans) Update(_ context.Context, plan *models.StudyPlan) error {
	clone := *plan
	f.updated = append(f.updated, &clone)
	f.plans[plan.ID] = &clone
	return nil
}

// plannerFakeSessions fails inserts whose index appears in failIndexes.
// A non-nil block channel stalls the insert until it is closed.
type plannerFakeSessions struct {
	failIndexes map[int]bool
	received    []models.StudySession
	block       chan struct{}
}

func (f *plannerFakeSessions) BulkCreate(_ context.Context, sessions []models.StudySession) []repository.BulkInsertResult {
	if f.block != nil {
		<-f.block
	}
	f.received = sessions
	results := make([]repository.BulkInsertResult, 0, len(sessions))
	for i := range sessions {
		if f.failIndexes[i] {
			results = append(results, repository.BulkInsertResult{Index: i, Err: errors.New("insert failed")})
			continue
		}
		results = append(results, repository.BulkInsertResult{Index: i, SessionID: fmt.Sprintf("session-%d", i)})
	}
	return results
}

type fakeOracle struct {
	estimate    oracle.Estimate
	estimateErr error
	events      []oracle.ScheduleEvent
	generateErr error
}

func (f *fakeOracle) EstimateExamPrep(context.Context, oracle.EstimateRequest) (oracle.Estimate, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeOracle) GenerateSessions(context.Context, oracle.GenerateRequest) ([]oracle.ScheduleEvent, error) {
	return f.events, f.generateErr
}

type plannerFixture struct {
	students  *plannerFakeStudents
	exams     *plannerFakeExams
	plans     *plannerFakePlans
	sessions  *plannerFakeSessions
	busySlots *plannerFakeBusySlots
}

func newPlannerFixture(examDate time.Time, units []string) *plannerFixture {
	return &plannerFixture{
		students: &plannerFakeStudents{student: &models.Student{
			ID:          "student-1",
			DisplayName: "Sam",
			Timezone:    "UTC",
		}},
		exams: &plannerFakeExams{exam: &models.Exam{
			ID:        "exam-1",
			StudentID: "student-1",
			SubjectID: "math",
			PaperType: "Paper 2",
			ExamDate:  examDate,
			Units:     units,
			Weight:    40,
		}},
		plans:     newPlannerFakePlans(),
		sessions:  &plannerFakeSessions{},
		busySlots: &plannerFakeBusySlots{},
	}
}

func (fx *plannerFixture) service(t *testing.T, params PlannerServiceParams) *PlannerService {
	t.Helper()
	params.Students = fx.students
	params.Exams = fx.exams
	params.Subjects = &plannerFakeSubjects{}
	params.BusySlots = fx.busySlots
	params.Plans = fx.plans
	params.Sessions = fx.sessions
	if params.Now == nil {
		params.Now = plannerNow
	}
	svc := NewPlannerService(params)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestCalculateFallbackEstimate(t *testing.T) {
	examDate := plannerNow().AddDate(0, 0, 10)
	fx := newPlannerFixture(examDate, []string{"algebra", "geometry", "calculus", "vectors", "statistics"})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	require.NoError(t, err)
	assert.Equal(t, 10, preview.DaysUntilExam)
	assert.InDelta(t, 16, preview.AvailableHoursPerDay, 0.0001)
	assert.InDelta(t, 160, preview.TotalAvailableHours, 0.0001)
	// Five Paper 2 units at 8 hours each.
	assert.InDelta(t, 40, preview.EstimatedHoursNeeded, 0.0001)
	assert.Equal(t, models.EstimateSourceFallback, preview.EstimateSource)
	assert.Equal(t, 4, preview.RecommendedSessions)
	assert.InDelta(t, 10, preview.HoursPerSession, 0.0001)
	assert.InDelta(t, 0.25, preview.Utilization, 0.0001)
	assert.False(t, preview.HighCommitment)
	assert.Equal(t, models.PlanStatusPreview, preview.Status)

	require.Len(t, fx.plans.created, 1)
	assert.Equal(t, models.PlanStatusPreview, fx.plans.created[0].Status)
}

func TestCalculatePastExamDateFailsPlan(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, -1), []string{"algebra"})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	assert.Nil(t, preview)
	assert.ErrorIs(t, err, appErrors.ErrPastExamDate)
	require.Len(t, fx.plans.created, 1)
	assert.Equal(t, models.PlanStatusError, fx.plans.created[0].Status)
	assert.NotEmpty(t, fx.plans.created[0].ErrorMessage)
}

func TestCalculateNoUnitsFailsPlan(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"", ""})
	svc := fx.service(t, PlannerServiceParams{})

	_, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	assert.ErrorIs(t, err, appErrors.ErrNoUnits)
	require.Len(t, fx.plans.created, 1)
	assert.Equal(t, models.PlanStatusError, fx.plans.created[0].Status)
}

func TestCalculateBusyCalendarFloorsAvailability(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	// 15 busy hours every day of the week leaves 1 waking hour; the floor
	// lifts it to 2.
	for day := 0; day < 7; day++ {
		fx.busySlots.slots = append(fx.busySlots.slots, models.BusySlot{
			DayOfWeek:    day,
			StartMinutes: 0,
			EndMinutes:   15 * 60,
			Recurring:    true,
		})
	}
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	require.NoError(t, err)
	assert.InDelta(t, 2, preview.AvailableHoursPerDay, 0.0001)
	assert.InDelta(t, 20, preview.TotalAvailableHours, 0.0001)
}

func TestCalculateOracleEstimateUsed(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	client := &fakeOracle{estimate: oracle.Estimate{
		Hours:     30,
		Reasoning: "dense syllabus",
		Source:    models.EstimateSourceOracle,
	}}
	svc := fx.service(t, PlannerServiceParams{
		Estimator:     client,
		Generator:     client,
		OracleEnabled: true,
	})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	require.NoError(t, err)
	assert.Equal(t, models.EstimateSourceOracle, preview.EstimateSource)
	assert.InDelta(t, 30, preview.EstimatedHoursNeeded, 0.0001)
	assert.Equal(t, "dense syllabus", preview.Reasoning)
}

func TestCalculateOracleFailureFallsBack(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra", "geometry"})
	client := &fakeOracle{estimateErr: errors.New("upstream timeout")}
	svc := fx.service(t, PlannerServiceParams{
		Estimator:     client,
		Generator:     client,
		OracleEnabled: true,
	})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	require.NoError(t, err)
	assert.Equal(t, models.EstimateSourceFallback, preview.EstimateSource)
	assert.InDelta(t, 16, preview.EstimatedHoursNeeded, 0.0001)
}

func TestCalculateClampsOversizedEstimate(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	client := &fakeOracle{estimate: oracle.Estimate{Hours: 500, Source: models.EstimateSourceOracle}}
	svc := fx.service(t, PlannerServiceParams{
		Estimator:     client,
		OracleEnabled: true,
	})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")

	require.NoError(t, err)
	// 80% of the 160 available hours.
	assert.InDelta(t, 128, preview.EstimatedHoursNeeded, 0.0001)
	assert.Contains(t, preview.Recommendation, "reduced")
}

func TestConfirmWithoutPreviewIsRejected(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	svc := fx.service(t, PlannerServiceParams{})

	_, err := svc.Confirm(context.Background(), "student-1", "missing-plan")

	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPlanState.Code, typed.Code)
}

func TestConfirmPersistsDistributedSessions(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra", "geometry"})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	result, err := svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)

	assert.Equal(t, models.PlanStatusComplete, result.Status)
	assert.False(t, result.Partial)
	require.NotEmpty(t, result.Sessions)
	for _, session := range result.Sessions {
		assert.True(t, session.Persisted)
		assert.NotEmpty(t, session.SessionID)
		assert.NotEmpty(t, session.Topic)
	}

	// The final session is the eve-of-exam review.
	last := result.Sessions[len(result.Sessions)-1]
	assert.Equal(t, "Final review", last.Topic)
	eve := plannerNow().AddDate(0, 0, 9).Format("2006-01-02")
	assert.Equal(t, eve, last.ScheduledDate)

	stored, err := fx.plans.FindByID(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusComplete, stored.Status)
	assert.Contains(t, stored.Summary, "study sessions")
}

func TestConfirmCannotRunTwice(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.Error(t, err)
	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrPlanState.Code, typed.Code)
}

func TestConfirmPartialPersistence(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	fx.sessions.failIndexes = map[int]bool{0: true}
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	result, err := svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)

	assert.True(t, result.Partial)
	assert.Equal(t, models.PlanStatusComplete, result.Status)
	assert.False(t, result.Sessions[0].Persisted)
	assert.NotEmpty(t, result.Sessions[0].Error)
	assert.Contains(t, result.Summary, "could not be saved")
}

func TestConfirmTotalPersistenceFailureReturnsToPreview(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	// Fail every insert on the first confirmation.
	fx.sessions.failIndexes = map[int]bool{}
	planned := distributeSessions(preview.EstimatedHoursNeeded, preview.DaysUntilExam)
	for i := range planned {
		fx.sessions.failIndexes[i] = true
	}

	_, err = svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.Error(t, err)

	stored, err := fx.plans.FindByID(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusPreview, stored.Status)

	// The preview entry was restored, so a retry with healthy storage succeeds.
	fx.sessions.failIndexes = nil
	result, err := svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusComplete, result.Status)
}

func TestConfirmTransientLookupFailureKeepsPreview(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	fx.plans.findErr = errors.New("connection reset")
	_, err = svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.Error(t, err)
	var appErr *appErrors.Error
	assert.False(t, errors.As(err, &appErr) && appErr.Code == appErrors.ErrPlanState.Code)

	// The preview entry survived the lookup failure, so the retry succeeds.
	result, err := svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusComplete, result.Status)
}

func TestConfirmCancelledPersistenceReturnsToPreview(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	fx.sessions.block = make(chan struct{})
	svc := fx.service(t, PlannerServiceParams{})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Confirm(cancelled, "student-1", preview.PlanID)
	require.Error(t, err)

	stored, err := fx.plans.FindByID(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusPreview, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "interrupted")

	// Release the stalled insert and retry with a live context.
	close(fx.sessions.block)
	result, err := svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusComplete, result.Status)
}

func TestConfirmUsesOracleTopics(t *testing.T) {
	fx := newPlannerFixture(plannerNow().AddDate(0, 0, 10), []string{"algebra"})
	client := &fakeOracle{
		estimate: oracle.Estimate{Hours: 6, Source: models.EstimateSourceOracle},
		events: []oracle.ScheduleEvent{
			{Kind: oracle.EventToolData, Session: &oracle.SessionDraft{Topic: "Quadratic equations", Difficulty: models.DifficultyEasy}},
			{Kind: oracle.EventToolData, Session: &oracle.SessionDraft{Topic: "Polynomial division", Difficulty: models.DifficultyHard}},
		},
	}
	svc := fx.service(t, PlannerServiceParams{
		Estimator:     client,
		Generator:     client,
		OracleEnabled: true,
	})

	preview, err := svc.Calculate(context.Background(), "student-1", "exam-1")
	require.NoError(t, err)

	result, err := svc.Confirm(context.Background(), "student-1", preview.PlanID)
	require.NoError(t, err)

	topics := map[string]bool{}
	for _, session := range result.Sessions {
		topics[session.Topic] = true
	}
	assert.True(t, topics["Quadratic equations"])
	assert.True(t, topics["Polynomial division"])
}

func TestPreviewEntriesExpire(t *testing.T) {
	store := newPreviewStore(time.Minute)
	now := plannerNow()

	store.put("plan-1", previewEntry{examID: "exam-1"}, now)

	_, ok := store.take("plan-1", now.Add(2*time.Minute))
	assert.False(t, ok)
}

func TestPreviewEntriesTakeRemoves(t *testing.T) {
	store := newPreviewStore(time.Minute)
	now := plannerNow()

	store.put("plan-1", previewEntry{examID: "exam-1"}, now)

	_, ok := store.take("plan-1", now.Add(30*time.Second))
	assert.True(t, ok)
	_, ok = store.take("plan-1", now.Add(30*time.Second))
	assert.False(t, ok)
}
