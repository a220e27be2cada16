package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/dto"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, studentID string, filter models.SessionFilter) ([]models.StudySession, int, error)
	UpdateStatus(ctx context.Context, studentID, id string, status models.SessionStatus) error
}

// SessionService exposes the scheduled-session surface the student works
// through. Sessions are created only by plan confirmation; here they are
// listed and moved through their status lifecycle.
type SessionService struct {
	repo        sessionRepository
	invalidator contextInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(repo sessionRepository, invalidator contextInvalidator, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns paginated sessions.
func (s *SessionService) List(ctx context.Context, studentID string, filter models.SessionFilter) ([]models.StudySession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, studentID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus moves a session through its lifecycle.
func (s *SessionService) UpdateStatus(ctx context.Context, studentID, id string, req dto.UpdateSessionStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session status payload")
	}

	if err := s.repo.UpdateStatus(ctx, studentID, id, models.SessionStatus(req.Status)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	s.invalidator.Invalidate(ctx, studentID)
	return nil
}
