package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateProfile(ctx context.Context, student *models.Student) error
}

// UpdateProfileRequest modifies the mutable profile fields.
type UpdateProfileRequest struct {
	DisplayName      *string `json:"displayName"`
	Timezone         *string `json:"timezone"`
	GradeLevel       *string `json:"gradeLevel"`
	EducationSystem  *string `json:"educationSystem"`
	EducationProgram *string `json:"educationProgram"`
}

// StudentService handles profile workflows.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// Get returns the student's profile.
func (s *StudentService) Get(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// UpdateProfile applies partial profile updates. The timezone must parse as
// an IANA zone so day-offset arithmetic stays trustworthy.
func (s *StudentService) UpdateProfile(ctx context.Context, studentID string, req UpdateProfileRequest) (*models.Student, error) {
	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "timezone must be a valid IANA zone name")
		}
		student.Timezone = *req.Timezone
	}
	if req.DisplayName != nil {
		student.DisplayName = *req.DisplayName
	}
	if req.GradeLevel != nil {
		student.GradeLevel = *req.GradeLevel
	}
	if req.EducationSystem != nil {
		student.EducationSystem = *req.EducationSystem
	}
	if req.EducationProgram != nil {
		student.EducationProgram = *req.EducationProgram
	}

	if err := s.repo.UpdateProfile(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return student, nil
}
