package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type trackingResetter interface {
	ResetAllTracking(ctx context.Context, studentID string) error
}

// StudentService handles archive and restore of students.
type StudentService struct {
	repo    studentRepository
	tracker trackingResetter
	logger  *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, tracker trackingResetter, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, tracker: tracker, logger: logger}
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Archive marks the student inactive. Streaks are left untouched so the
// state that led to archival stays readable.
func (s *StudentService) Archive(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return student, nil
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive student")
	}
	student.Active = false
	logger.WithContext(ctx, s.logger).Info("student archived", zap.String("student_id", id))
	return student, nil
}

// Restore reactivates the student and starts every streak from zero.
func (s *StudentService) Restore(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		if err := s.repo.SetActive(ctx, id, true); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore student")
		}
		student.Active = true
	}
	if err := s.tracker.ResetAllTracking(ctx, id); err != nil {
		return nil, err
	}
	logger.WithContext(ctx, s.logger).Info("student restored", zap.String("student_id", id))
	return student, nil
}
