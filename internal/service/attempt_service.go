package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type attemptRepository interface {
	List(ctx context.Context, studentID string, filter models.AttemptFilter) ([]models.TaskAttempt, error)
	Create(ctx context.Context, attempt *models.TaskAttempt) error
}

// AttemptService records practice outcomes. The log is append-only; there
// is deliberately no update or delete surface.
type AttemptService struct {
	repo        attemptRepository
	invalidator contextInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttemptService creates a new attempt service.
func NewAttemptService(repo attemptRepository, invalidator contextInvalidator, validate *validator.Validate, logger *zap.Logger) *AttemptService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttemptService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns attempts, oldest first.
func (s *AttemptService) List(ctx context.Context, studentID string, filter models.AttemptFilter) ([]models.TaskAttempt, error) {
	attempts, err := s.repo.List(ctx, studentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attempts")
	}
	return attempts, nil
}

// Record appends one attempt.
func (s *AttemptService) Record(ctx context.Context, studentID string, req dto.RecordAttemptRequest) (*models.TaskAttempt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attempt payload")
	}

	attempt := &models.TaskAttempt{
		StudentID:        studentID,
		SubjectID:        req.SubjectID,
		Topic:            req.Topic,
		Difficulty:       models.Difficulty(req.Difficulty),
		Correct:          req.Correct,
		TimeSpentSeconds: req.TimeSpentSeconds,
		EstimatedMinutes: req.EstimatedMinutes,
		AttemptedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attempt")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return attempt, nil
}
