package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type busySlotRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.BusySlot, error)
	Create(ctx context.Context, slot *models.BusySlot) error
	Delete(ctx context.Context, studentID, id string) error
}

// BusySlotService handles the busy-time calendar.
type BusySlotService struct {
	repo      busySlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBusySlotService creates a new busy slot service.
func NewBusySlotService(repo busySlotRepository, validate *validator.Validate, logger *zap.Logger) *BusySlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusySlotService{repo: repo, validator: validate, logger: logger}
}

// List returns all busy slots for the student.
func (s *BusySlotService) List(ctx context.Context, studentID string) ([]models.BusySlot, error) {
	slots, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list busy slots")
	}
	return slots, nil
}

// Create adds a busy slot. Start must precede end; one-off slots need a
// date, recurring slots a day of week.
func (s *BusySlotService) Create(ctx context.Context, studentID string, req dto.CreateBusySlotRequest) (*models.BusySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid busy slot payload")
	}
	if req.EndMinutes <= req.StartMinutes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "busy slot must end after it starts")
	}

	slot := &models.BusySlot{
		StudentID:    studentID,
		DayOfWeek:    req.DayOfWeek,
		StartMinutes: req.StartMinutes,
		EndMinutes:   req.EndMinutes,
		Recurring:    req.Recurring,
		Label:        req.Label,
	}

	if !req.Recurring {
		if req.Date == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "one-off busy slots require a date")
		}
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		slot.Date = sql.NullTime{Time: date, Valid: true}
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create busy slot")
	}
	return slot, nil
}

// Delete removes a busy slot.
func (s *BusySlotService) Delete(ctx context.Context, studentID, id string) error {
	if err := s.repo.Delete(ctx, studentID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "busy slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete busy slot")
	}
	return nil
}
