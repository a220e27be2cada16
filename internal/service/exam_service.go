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

type examRepository interface {
	List(ctx context.Context, studentID string, filter models.ExamFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, studentID, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, studentID, id string) error
}

// ExamService handles exam workflows.
type ExamService struct {
	repo        examRepository
	invalidator contextInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewExamService creates a new exam service.
func NewExamService(repo examRepository, invalidator contextInvalidator, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns paginated exams.
func (s *ExamService) List(ctx context.Context, studentID string, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error) {
	exams, total, err := s.repo.List(ctx, studentID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return exams, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, studentID, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, studentID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Create adds a new exam.
func (s *ExamService) Create(ctx context.Context, studentID string, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}

	examDate, err := time.Parse(time.RFC3339, req.ExamDate)
	if err != nil {
		if examDate, err = time.Parse("2006-01-02", req.ExamDate); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "examDate must be RFC3339 or YYYY-MM-DD")
		}
	}

	exam := &models.Exam{
		StudentID: studentID,
		SubjectID: req.SubjectID,
		PaperType: req.PaperType,
		ExamDate:  examDate,
		Units:     req.Units,
		Weight:    req.Weight,
	}

	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return exam, nil
}

// Update replaces exam fields. Date or unit edits are expected to trigger a
// plan recalculation on the client side.
func (s *ExamService) Update(ctx context.Context, studentID, id string, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}

	exam, err := s.Get(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	examDate, err := time.Parse(time.RFC3339, req.ExamDate)
	if err != nil {
		if examDate, err = time.Parse("2006-01-02", req.ExamDate); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "examDate must be RFC3339 or YYYY-MM-DD")
		}
	}

	exam.SubjectID = req.SubjectID
	exam.PaperType = req.PaperType
	exam.ExamDate = examDate
	exam.Units = req.Units
	exam.Weight = req.Weight

	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return exam, nil
}

// Delete removes an exam.
func (s *ExamService) Delete(ctx context.Context, studentID, id string) error {
	if _, err := s.Get(ctx, studentID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, studentID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return nil
}
