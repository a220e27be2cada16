package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// TaskAttemptRepository provides append/read access to attempt history.
type TaskAttemptRepository struct {
	db *sqlx.DB
}

// NewTaskAttemptRepository creates a new task attempt repository.
func NewTaskAttemptRepository(db *sqlx.DB) *TaskAttemptRepository {
	return &TaskAttemptRepository{db: db}
}

const attemptColumns = "id, student_id, subject_id, topic, difficulty, correct, time_spent_seconds, estimated_minutes, attempted_at"

// List returns attempts for a student ordered oldest first so downstream
// window math can index by recency.
func (r *TaskAttemptRepository) List(ctx context.Context, studentID string, filter models.AttemptFilter) ([]models.TaskAttempt, error) {
	base := "FROM task_attempts WHERE student_id = $1"
	args := []interface{}{studentID}
	var conditions []string

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Topic != "" {
		conditions = append(conditions, fmt.Sprintf("topic = $%d", len(args)+1))
		args = append(args, filter.Topic)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("attempted_at >= $%d", len(args)+1))
		args = append(args, filter.Since)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY attempted_at ASC", attemptColumns, base)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var attempts []models.TaskAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, args...); err != nil {
		return nil, fmt.Errorf("list task attempts: %w", err)
	}
	return attempts, nil
}

// Create appends a new attempt. Attempts are never updated or deleted.
func (r *TaskAttemptRepository) Create(ctx context.Context, attempt *models.TaskAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now().UTC()
	}

	const query = `INSERT INTO task_attempts (id, student_id, subject_id, topic, difficulty, correct, time_spent_seconds, estimated_minutes, attempted_at)
		VALUES (:id, :student_id, :subject_id, :topic, :difficulty, :correct, :time_spent_seconds, :estimated_minutes, :attempted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return fmt.Errorf("create task attempt: %w", err)
	}
	return nil
}
