package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// StudyPlanRepository provides persistence for plan generation runs.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository creates a new study plan repository.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

const planColumns = `id, student_id, exam_id, status, days_until_exam, available_hours_per_day, total_available_hours,
	estimated_hours_needed, estimate_source, recommended_sessions, hours_per_session, estimate_reasoning,
	estimate_recommendation, summary, error_message, created_at, updated_at`

// ListByStudent returns plans newest first.
func (r *StudyPlanRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudyPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM study_plans WHERE student_id = $1 ORDER BY created_at DESC", planColumns)
	var plans []models.StudyPlan
	if err := r.db.SelectContext(ctx, &plans, query, studentID); err != nil {
		return nil, fmt.Errorf("list study plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a plan by id scoped to a student.
func (r *StudyPlanRepository) FindByID(ctx context.Context, studentID, id string) (*models.StudyPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM study_plans WHERE id = $1 AND student_id = $2", planColumns)
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id, studentID); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create stores a new plan run.
func (r *StudyPlanRepository) Create(ctx context.Context, plan *models.StudyPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	const query = `INSERT INTO study_plans (id, student_id, exam_id, status, days_until_exam, available_hours_per_day,
		total_available_hours, estimated_hours_needed, estimate_source, recommended_sessions, hours_per_session,
		estimate_reasoning, estimate_recommendation, summary, error_message, created_at, updated_at)
		VALUES (:id, :student_id, :exam_id, :status, :days_until_exam, :available_hours_per_day,
		:total_available_hours, :estimated_hours_needed, :estimate_source, :recommended_sessions, :hours_per_session,
		:estimate_reasoning, :estimate_recommendation, :summary, :error_message, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create study plan: %w", err)
	}
	return nil
}

// Update persists state transitions and computed fields.
func (r *StudyPlanRepository) Update(ctx context.Context, plan *models.StudyPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE study_plans SET status = :status, days_until_exam = :days_until_exam,
		available_hours_per_day = :available_hours_per_day, total_available_hours = :total_available_hours,
		estimated_hours_needed = :estimated_hours_needed, estimate_source = :estimate_source,
		recommended_sessions = :recommended_sessions, hours_per_session = :hours_per_session,
		estimate_reasoning = :estimate_reasoning, estimate_recommendation = :estimate_recommendation,
		summary = :summary, error_message = :error_message, updated_at = :updated_at
		WHERE id = :id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update study plan: %w", err)
	}
	return nil
}
