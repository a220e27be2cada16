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

// ExamRepository provides persistence for exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = "id, student_id, subject_id, paper_type, exam_date, units, weight, created_at, updated_at"

// List returns exams for a student with optional filtering.
func (r *ExamRepository) List(ctx context.Context, studentID string, filter models.ExamFilter) ([]models.Exam, int, error) {
	base := "FROM exams WHERE student_id = $1"
	args := []interface{}{studentID}
	var conditions []string

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if !filter.After.IsZero() {
		conditions = append(conditions, fmt.Sprintf("exam_date >= $%d", len(args)+1))
		args = append(args, filter.After)
	}
	if !filter.Before.IsZero() {
		conditions = append(conditions, fmt.Sprintf("exam_date <= $%d", len(args)+1))
		args = append(args, filter.Before)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY exam_date ASC LIMIT %d OFFSET %d", examColumns, base, size, offset)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// ListUpcoming returns future-dated exams ordered soonest first.
func (r *ExamRepository) ListUpcoming(ctx context.Context, studentID string, from time.Time) ([]models.Exam, error) {
	query := fmt.Sprintf("SELECT %s FROM exams WHERE student_id = $1 AND exam_date >= $2 ORDER BY exam_date ASC", examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, studentID, from); err != nil {
		return nil, fmt.Errorf("list upcoming exams: %w", err)
	}
	return exams, nil
}

// FindByID loads an exam by id scoped to a student.
func (r *ExamRepository) FindByID(ctx context.Context, studentID, id string) (*models.Exam, error) {
	query := fmt.Sprintf("SELECT %s FROM exams WHERE id = $1 AND student_id = $2", examColumns)
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id, studentID); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create stores a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (id, student_id, subject_id, paper_type, exam_date, units, weight, created_at, updated_at)
		VALUES (:id, :student_id, :subject_id, :paper_type, :exam_date, :units, :weight, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update modifies an exam record. Date or unit edits trigger schedule
// recomputation upstream.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET subject_id = :subject_id, paper_type = :paper_type, exam_date = :exam_date,
		units = :units, weight = :weight, updated_at = :updated_at
		WHERE id = :id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// Delete removes an exam by id.
func (r *ExamRepository) Delete(ctx context.Context, studentID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1 AND student_id = $2`, id, studentID); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}
