package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// GoalRepository provides persistence for study goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new goal repository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = "id, student_id, subject_id, title, target_date, progress_percent, created_at, updated_at"

// ListByStudent returns goals ordered by target date.
func (r *GoalRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Goal, error) {
	query := fmt.Sprintf("SELECT %s FROM goals WHERE student_id = $1 ORDER BY target_date ASC", goalColumns)
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query, studentID); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// Create stores a new goal.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	const query = `INSERT INTO goals (id, student_id, subject_id, title, target_date, progress_percent, created_at, updated_at)
		VALUES (:id, :student_id, :subject_id, :title, :target_date, :progress_percent, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}
