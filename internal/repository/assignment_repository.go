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

// AssignmentRepository provides persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "id, student_id, subject_id, title, due_date, completion_percent, estimated_hours, created_at, updated_at"

// List returns assignments for a student with optional filtering.
func (r *AssignmentRepository) List(ctx context.Context, studentID string, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	base := "FROM assignments WHERE student_id = $1"
	args := []interface{}{studentID}
	var conditions []string

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if !filter.DueAfter.IsZero() {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", len(args)+1))
		args = append(args, filter.DueAfter)
	}
	if filter.Incomplete {
		conditions = append(conditions, "completion_percent < 100")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY due_date ASC LIMIT %d OFFSET %d", assignmentColumns, base, size, offset)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// ListOpen returns assignments that are not yet complete.
func (r *AssignmentRepository) ListOpen(ctx context.Context, studentID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE student_id = $1 AND completion_percent < 100 ORDER BY due_date ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, studentID); err != nil {
		return nil, fmt.Errorf("list open assignments: %w", err)
	}
	return assignments, nil
}

// FindByID loads an assignment by id scoped to a student.
func (r *AssignmentRepository) FindByID(ctx context.Context, studentID, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1 AND student_id = $2", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id, studentID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create stores a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `INSERT INTO assignments (id, student_id, subject_id, title, due_date, completion_percent, estimated_hours, created_at, updated_at)
		VALUES (:id, :student_id, :subject_id, :title, :due_date, :completion_percent, :estimated_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies an assignment record.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET subject_id = :subject_id, title = :title, due_date = :due_date,
		completion_percent = :completion_percent, estimated_hours = :estimated_hours, updated_at = :updated_at
		WHERE id = :id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment by id.
func (r *AssignmentRepository) Delete(ctx context.Context, studentID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1 AND student_id = $2`, id, studentID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
