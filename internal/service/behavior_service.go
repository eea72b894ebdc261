package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
)

type behaviorRepository interface {
	List(ctx context.Context, filter models.BehaviorIncidentFilter) ([]models.BehaviorIncident, int, error)
	Create(ctx context.Context, incident *models.BehaviorIncident) error
	IncidentsOf(ctx context.Context, studentID string, limit int) ([]models.IncidentRecord, error)
}

type behavioralTracker interface {
	UpdateBehavioralTracking(ctx context.Context, studentID, referenceID, incidentKind string) (*models.TrackingRecord, error)
}

// BehaviorService records behavioral incidents and feeds them to the streak engine.
type BehaviorService struct {
	repo      behaviorRepository
	tracker   behavioralTracker
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBehaviorService constructs the service.
func NewBehaviorService(repo behaviorRepository, tracker behavioralTracker, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorService{repo: repo, tracker: tracker, validator: validate, logger: logger, now: time.Now}
}

// BehaviorListRequest describes filters for listing incidents.
type BehaviorListRequest struct {
	StudentID     string     `json:"student_id"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	IncidentKinds []string   `json:"incident_kinds"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
}

// RecordIncidentRequest describes the record payload. LessonID doubles as the
// reference of the resulting streak update.
type RecordIncidentRequest struct {
	StudentID    string     `json:"student_id" validate:"required"`
	LessonID     string     `json:"lesson_id" validate:"required"`
	IncidentKind string     `json:"incident_kind" validate:"required,max=64"`
	Description  string     `json:"description"`
	RecordedBy   string     `json:"-"`
	OccurredAt   *time.Time `json:"occurred_at"`
}

// RecordIncidentResult pairs the stored incident with the streak it produced.
type RecordIncidentResult struct {
	Incident models.BehaviorIncident `json:"incident"`
	Tracking *models.TrackingRecord  `json:"tracking"`
}

// List returns incidents with pagination.
func (s *BehaviorService) List(ctx context.Context, req BehaviorListRequest) ([]models.BehaviorIncident, *models.Pagination, error) {
	filter := models.BehaviorIncidentFilter{
		StudentID:     req.StudentID,
		IncidentKinds: req.IncidentKinds,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}.Normalize()
	incidents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list behavior incidents")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return incidents, pagination, nil
}

// Record stores an incident, then advances the behavioral streak. The incident
// stays stored when tracking fails; the tracking error is returned.
//
// An incident must not predate the student's latest one, otherwise it would
// not be the entry the streak compares against. An omitted occurred_at is the
// current time, or the latest incident's time when that is later.
func (s *BehaviorService) Record(ctx context.Context, req RecordIncidentRequest) (*RecordIncidentResult, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.LessonID = strings.TrimSpace(req.LessonID)
	req.IncidentKind = strings.TrimSpace(req.IncidentKind)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	occurredAt, err := s.occurredAt(ctx, req)
	if err != nil {
		return nil, err
	}
	incident := &models.BehaviorIncident{
		StudentID:    req.StudentID,
		LessonID:     req.LessonID,
		IncidentKind: req.IncidentKind,
		Description:  req.Description,
		RecordedBy:   req.RecordedBy,
		OccurredAt:   occurredAt,
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record behavior incident")
	}

	tracking, err := s.tracker.UpdateBehavioralTracking(ctx, incident.StudentID, incident.LessonID, incident.IncidentKind)
	if err != nil {
		logger.WithContext(ctx, s.logger).Error("behavioral tracking failed after incident was stored",
			zap.String("incident_id", incident.ID),
			zap.String("student_id", incident.StudentID),
			zap.Error(err),
		)
		return nil, err
	}
	return &RecordIncidentResult{Incident: *incident, Tracking: tracking}, nil
}

const maxClockSkew = 5 * time.Minute

func (s *BehaviorService) occurredAt(ctx context.Context, req RecordIncidentRequest) (time.Time, error) {
	now := s.now().UTC()
	if req.OccurredAt != nil && req.OccurredAt.After(now.Add(maxClockSkew)) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "occurred_at is in the future")
	}
	latest, err := s.repo.IncidentsOf(ctx, req.StudentID, 1)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read incident history")
	}
	if req.OccurredAt == nil {
		if len(latest) > 0 && latest[0].OccurredAt.After(now) {
			return latest[0].OccurredAt.UTC(), nil
		}
		return now, nil
	}
	at := req.OccurredAt.UTC()
	if len(latest) > 0 && at.Before(latest[0].OccurredAt) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("occurred_at predates the latest incident of student %s (%s)", req.StudentID, latest[0].OccurredAt.UTC().Format(time.RFC3339)))
	}
	return at, nil
}
