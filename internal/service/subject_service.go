package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, studentID string, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, studentID, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Archive(ctx context.Context, studentID, id string) error
}

// contextInvalidator drops cached aggregations after source-data writes.
type contextInvalidator interface {
	Invalidate(ctx context.Context, studentID string)
}

// SubjectService handles subject workflows.
type SubjectService struct {
	repo        subjectRepository
	invalidator contextInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, invalidator contextInvalidator, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns paginated subjects.
func (s *SubjectService) List(ctx context.Context, studentID string, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, studentID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return subjects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one subject.
func (s *SubjectService) Get(ctx context.Context, studentID, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, studentID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject.
func (s *SubjectService) Create(ctx context.Context, studentID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject := &models.Subject{
		StudentID:    studentID,
		Name:         strings.TrimSpace(req.Name),
		Category:     req.Category,
		Level:        req.Level,
		Color:        req.Color,
		CurrentGrade: req.CurrentGrade,
		TargetGrade:  req.TargetGrade,
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return subject, nil
}

// Update modifies an existing subject. Nil fields are left untouched.
func (s *SubjectService) Update(ctx context.Context, studentID, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.Get(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		subject.Category = *req.Category
	}
	if req.Level != nil {
		subject.Level = *req.Level
	}
	if req.Color != nil {
		subject.Color = *req.Color
	}
	if req.CurrentGrade != nil {
		subject.CurrentGrade = *req.CurrentGrade
	}
	if req.TargetGrade != nil {
		subject.TargetGrade = *req.TargetGrade
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return subject, nil
}

// Archive soft-deletes a subject. Archived subjects stay referenceable by
// historical sessions and attempts.
func (s *SubjectService) Archive(ctx context.Context, studentID, id string) error {
	if _, err := s.Get(ctx, studentID, id); err != nil {
		return err
	}
	if err := s.repo.Archive(ctx, studentID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive subject")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return nil
}
