package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
)

type lessonAttendanceRepository interface {
	Upsert(ctx context.Context, record *models.LessonAttendance) (*models.LessonAttendance, error)
	ListByLesson(ctx context.Context, lessonID string) ([]models.LessonAttendance, error)
}

type absenceTracker interface {
	UpdateAbsenceTracking(ctx context.Context, studentID, referenceID string, outcome models.AttendanceOutcome) (*models.TrackingRecord, error)
}

// AttendanceService coordinates the lesson completion workflow.
type AttendanceService struct {
	repo      lessonAttendanceRepository
	tracker   absenceTracker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo lessonAttendanceRepository, tracker absenceTracker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, tracker: tracker, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// LessonMark is one student's mark in a completed lesson.
type LessonMark struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes"`
}

// CompleteLessonRequest carries every mark of a lesson.
type CompleteLessonRequest struct {
	LessonID string       `json:"-" validate:"required"`
	Marks    []LessonMark `json:"marks" validate:"required,min=1,dive"`
}

// CompleteLesson stores the marks of a lesson and feeds each tracked outcome
// to the absence streak, one student at a time in request order. Processing
// stops at the first failure; marks handled before it stay applied.
//
// A resubmitted mark equal to the stored one is returned as is and does not
// move the streak again. A resubmitted mark with a different status is a
// conflict and rejects the whole request before anything is written.
func (s *AttendanceService) CompleteLesson(ctx context.Context, req CompleteLessonRequest) ([]models.LessonAttendanceResult, error) {
	req.LessonID = strings.TrimSpace(req.LessonID)
	for i := range req.Marks {
		req.Marks[i].StudentID = strings.TrimSpace(req.Marks[i].StudentID)
		req.Marks[i].Status = strings.ToUpper(strings.TrimSpace(req.Marks[i].Status))
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	seen := make(map[string]struct{}, len(req.Marks))
	for _, mark := range req.Marks {
		if _, dup := seen[mark.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s is marked more than once", mark.StudentID))
		}
		seen[mark.StudentID] = struct{}{}
	}

	existing, err := s.repo.ListByLesson(ctx, req.LessonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson attendance")
	}
	stored := make(map[string]models.LessonAttendance, len(existing))
	for _, row := range existing {
		stored[row.StudentID] = row
	}
	for _, mark := range req.Marks {
		if row, ok := stored[mark.StudentID]; ok && row.Status != models.AttendanceStatus(mark.Status) {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("student %s is already marked %s for lesson %s", mark.StudentID, row.Status, req.LessonID))
		}
	}

	log := logger.WithContext(ctx, s.logger).With(zap.String("lesson_id", req.LessonID))
	results := make([]models.LessonAttendanceResult, 0, len(req.Marks))
	unchanged := 0
	for _, mark := range req.Marks {
		if row, ok := stored[mark.StudentID]; ok {
			results = append(results, models.LessonAttendanceResult{Attendance: row})
			unchanged++
			continue
		}
		record := &models.LessonAttendance{
			LessonID:  req.LessonID,
			StudentID: mark.StudentID,
			Status:    models.AttendanceStatus(mark.Status),
			Notes:     mark.Notes,
		}
		saved, err := s.repo.Upsert(ctx, record)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store lesson attendance")
		}
		result := models.LessonAttendanceResult{Attendance: *saved}
		if outcome, tracked := saved.Status.Outcome(); tracked {
			tracking, err := s.tracker.UpdateAbsenceTracking(ctx, saved.StudentID, req.LessonID, outcome)
			if err != nil {
				log.Error("absence tracking failed", zap.String("student_id", saved.StudentID), zap.Error(err))
				return nil, err
			}
			result.Tracking = tracking
		}
		results = append(results, result)
	}
	log.Info("lesson completed", zap.Int("marks", len(results)), zap.Int("unchanged", unchanged))
	return results, nil
}

// LessonAttendance lists the marks stored for a lesson.
func (s *AttendanceService) LessonAttendance(ctx context.Context, lessonID string) ([]models.LessonAttendance, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson id is required")
	}
	rows, err := s.repo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson attendance")
	}
	return rows, nil
}
