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

// SubjectRepository provides persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "id, student_id, name, category, level, color, current_grade, target_grade, archived, created_at, updated_at"

// List returns subjects for a student with optional filtering.
func (r *SubjectRepository) List(ctx context.Context, studentID string, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE student_id = $1"
	args := []interface{}{studentID}
	var conditions []string

	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = FALSE")
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", subjectColumns, base, size, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID loads a subject by id scoped to a student.
func (r *SubjectRepository) FindByID(ctx context.Context, studentID, id string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = $1 AND student_id = $2", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id, studentID); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create stores a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, student_id, name, category, level, color, current_grade, target_grade, archived, created_at, updated_at)
		VALUES (:id, :student_id, :name, :category, :level, :color, :current_grade, :target_grade, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject record.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, category = :category, level = :level, color = :color,
		current_grade = :current_grade, target_grade = :target_grade, archived = :archived, updated_at = :updated_at
		WHERE id = :id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Archive soft-deletes a subject. Subjects referenced by sessions or
// attempts are never hard-deleted.
func (r *SubjectRepository) Archive(ctx context.Context, studentID, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE subjects SET archived = TRUE, updated_at = $1 WHERE id = $2 AND student_id = $3`, time.Now().UTC(), id, studentID); err != nil {
		return fmt.Errorf("archive subject: %w", err)
	}
	return nil
}
