package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// StudySessionRepository provides persistence for scheduled sessions.
type StudySessionRepository struct {
	db *sqlx.DB
}

// NewStudySessionRepository creates a new study session repository.
func NewStudySessionRepository(db *sqlx.DB) *StudySessionRepository {
	return &StudySessionRepository{db: db}
}

const sessionColumns = "id, student_id, subject_id, plan_id, topic, difficulty, scheduled_date, time_of_day, duration_minutes, status, created_at, updated_at"

// List returns sessions for a student with optional filtering.
func (r *StudySessionRepository) List(ctx context.Context, studentID string, filter models.SessionFilter) ([]models.StudySession, int, error) {
	base := "FROM study_sessions WHERE student_id = $1"
	args := []interface{}{studentID}
	var conditions []string

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.PlanID != "" {
		conditions = append(conditions, fmt.Sprintf("plan_id = $%d", len(args)+1))
		args = append(args, filter.PlanID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("scheduled_date >= $%d", len(args)+1))
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("scheduled_date <= $%d", len(args)+1))
		args = append(args, filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY scheduled_date ASC, time_of_day ASC LIMIT %d OFFSET %d", sessionColumns, base, size, offset)
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list study sessions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count study sessions: %w", err)
	}
	return sessions, total, nil
}

// ListBySubject returns sessions for one subject ordered most recent first.
func (r *StudySessionRepository) ListBySubject(ctx context.Context, studentID, subjectID string) ([]models.StudySession, error) {
	query := fmt.Sprintf("SELECT %s FROM study_sessions WHERE student_id = $1 AND subject_id = $2 ORDER BY scheduled_date DESC", sessionColumns)
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, studentID, subjectID); err != nil {
		return nil, fmt.Errorf("list sessions by subject: %w", err)
	}
	return sessions, nil
}

// ListRecent returns the most recently scheduled sessions.
func (r *StudySessionRepository) ListRecent(ctx context.Context, studentID string, limit int) ([]models.StudySession, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM study_sessions WHERE student_id = $1 ORDER BY scheduled_date DESC LIMIT %d", sessionColumns, limit)
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	return sessions, nil
}

// Create inserts a single session row.
func (r *StudySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = models.SessionStatusPending
	}

	const query = `INSERT INTO study_sessions (id, student_id, subject_id, plan_id, topic, difficulty, scheduled_date, time_of_day, duration_minutes, status, created_at, updated_at)
		VALUES (:id, :student_id, :subject_id, :plan_id, :topic, :difficulty, :scheduled_date, :time_of_day, :duration_minutes, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create study session: %w", err)
	}
	return nil
}

// BulkInsertResult reports the outcome of one row in a bulk insert.
type BulkInsertResult struct {
	Index     int
	SessionID string
	Err       error
}

// BulkCreate inserts generated sessions one row at a time and reports
// per-row outcomes. Rows are independently useful, so a failed insert
// never rolls back its predecessors; the caller surfaces partial results.
func (r *StudySessionRepository) BulkCreate(ctx context.Context, sessions []models.StudySession) []BulkInsertResult {
	results := make([]BulkInsertResult, 0, len(sessions))
	for i := range sessions {
		err := r.Create(ctx, &sessions[i])
		result := BulkInsertResult{Index: i, SessionID: sessions[i].ID, Err: err}
		if err != nil {
			result.SessionID = ""
		}
		results = append(results, result)
	}
	return results
}

// UpdateStatus transitions a session's lifecycle state.
func (r *StudySessionRepository) UpdateStatus(ctx context.Context, studentID, id string, status models.SessionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE study_sessions SET status = $1, updated_at = $2 WHERE id = $3 AND student_id = $4`, status, time.Now().UTC(), id, studentID)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update session status: %w", sql.ErrNoRows)
	}
	return nil
}

// TotalMinutesBySubject sums logged study minutes per subject for the
// preparation-gap factor.
func (r *StudySessionRepository) TotalMinutesBySubject(ctx context.Context, studentID, subjectID string) (int, error) {
	var total int
	const query = `SELECT COALESCE(SUM(duration_minutes), 0) FROM study_sessions
		WHERE student_id = $1 AND subject_id = $2 AND status IN ($3, $4)`
	if err := r.db.GetContext(ctx, &total, query, studentID, subjectID, models.SessionStatusCompleted, models.SessionStatusInProgress); err != nil {
		return 0, fmt.Errorf("sum session minutes: %w", err)
	}
	return total, nil
}
