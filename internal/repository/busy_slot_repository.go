package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// BusySlotRepository provides read/write access to busy time blocks.
type BusySlotRepository struct {
	db *sqlx.DB
}

// NewBusySlotRepository creates a new busy slot repository.
func NewBusySlotRepository(db *sqlx.DB) *BusySlotRepository {
	return &BusySlotRepository{db: db}
}

const busySlotColumns = "id, student_id, day_of_week, date, start_minutes, end_minutes, recurring, label, created_at"

// ListByStudent returns every busy slot for a student.
func (r *BusySlotRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BusySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM busy_slots WHERE student_id = $1 ORDER BY day_of_week ASC, start_minutes ASC", busySlotColumns)
	var slots []models.BusySlot
	if err := r.db.SelectContext(ctx, &slots, query, studentID); err != nil {
		return nil, fmt.Errorf("list busy slots: %w", err)
	}
	return slots, nil
}

// ListRecurring returns only the weekly recurring slots. One-off slots
// are deliberately excluded from the availability baseline.
func (r *BusySlotRepository) ListRecurring(ctx context.Context, studentID string) ([]models.BusySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM busy_slots WHERE student_id = $1 AND recurring = TRUE ORDER BY day_of_week ASC, start_minutes ASC", busySlotColumns)
	var slots []models.BusySlot
	if err := r.db.SelectContext(ctx, &slots, query, studentID); err != nil {
		return nil, fmt.Errorf("list recurring busy slots: %w", err)
	}
	return slots, nil
}

// Create stores a new busy slot.
func (r *BusySlotRepository) Create(ctx context.Context, slot *models.BusySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO busy_slots (id, student_id, day_of_week, date, start_minutes, end_minutes, recurring, label, created_at)
		VALUES (:id, :student_id, :day_of_week, :date, :start_minutes, :end_minutes, :recurring, :label, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create busy slot: %w", err)
	}
	return nil
}

// Delete removes a busy slot by id.
func (r *BusySlotRepository) Delete(ctx context.Context, studentID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM busy_slots WHERE id = $1 AND student_id = $2`, id, studentID); err != nil {
		return fmt.Errorf("delete busy slot: %w", err)
	}
	return nil
}
