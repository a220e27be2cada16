package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type goalRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
}

// CreateGoalRequest captures fields for declaring a goal.
type CreateGoalRequest struct {
	SubjectID       string  `json:"subjectId"`
	Title           string  `json:"title" validate:"required"`
	TargetDate      string  `json:"targetDate" validate:"required"`
	ProgressPercent float64 `json:"progressPercent" validate:"gte=0,lte=100"`
}

// GoalService handles student-declared targets.
type GoalService struct {
	repo        goalRepository
	invalidator contextInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(repo goalRepository, invalidator contextInvalidator, validate *validator.Validate, logger *zap.Logger) *GoalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns the student's goals.
func (s *GoalService) List(ctx context.Context, studentID string) ([]models.Goal, error) {
	goals, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	return goals, nil
}

// Create declares a new goal.
func (s *GoalService) Create(ctx context.Context, studentID string, req CreateGoalRequest) (*models.Goal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "targetDate must be YYYY-MM-DD")
	}

	goal := &models.Goal{
		StudentID:       studentID,
		SubjectID:       req.SubjectID,
		Title:           req.Title,
		TargetDate:      targetDate,
		ProgressPercent: req.ProgressPercent,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create goal")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return goal, nil
}
