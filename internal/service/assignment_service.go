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

type assignmentRepository interface {
	List(ctx context.Context, studentID string, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, studentID, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, studentID, id string) error
}

// AssignmentService handles assignment workflows.
type AssignmentService struct {
	repo        assignmentRepository
	invalidator contextInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(repo assignmentRepository, invalidator contextInvalidator, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns paginated assignments.
func (s *AssignmentService) List(ctx context.Context, studentID string, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, studentID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return assignments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, studentID, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, studentID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create adds a new assignment.
func (s *AssignmentService) Create(ctx context.Context, studentID string, req dto.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dueDate must be RFC3339")
	}

	assignment := &models.Assignment{
		StudentID:         studentID,
		SubjectID:         req.SubjectID,
		Title:             req.Title,
		DueDate:           dueDate,
		CompletionPercent: req.CompletionPercent,
		EstimatedHours:    req.EstimatedHours,
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return assignment, nil
}

// Update replaces assignment fields.
func (s *AssignmentService) Update(ctx context.Context, studentID, id string, req dto.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment, err := s.Get(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dueDate must be RFC3339")
	}

	assignment.SubjectID = req.SubjectID
	assignment.Title = req.Title
	assignment.DueDate = dueDate
	assignment.CompletionPercent = req.CompletionPercent
	assignment.EstimatedHours = req.EstimatedHours

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, studentID, id string) error {
	if _, err := s.Get(ctx, studentID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, studentID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return nil
}
