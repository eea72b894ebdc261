package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/events"
	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
)

type trackingStore interface {
	Find(ctx context.Context, studentID string, kind models.TrackingKind) (*models.TrackingRecord, error)
	Upsert(ctx context.Context, record *models.TrackingRecord) (*models.TrackingRecord, error)
	ResetAll(ctx context.Context, studentID string) error
}

type incidentHistoryReader interface {
	IncidentsOf(ctx context.Context, studentID string, limit int) ([]models.IncidentRecord, error)
}

type signalPublisher interface {
	Publish(ctx context.Context, signal events.Signal)
}

// discardPublisher drops signals; used when the engine runs without a bus.
type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, events.Signal) {}

// ConsecutivityService maintains absence and behavioral-incident streaks and
// answers read-only questions about them.
//
// Each update is a read-modify-write on one (student, kind) counter followed by
// synchronous publication. Callers serialize updates for the same student and
// kind; the store's upsert keeps concurrent first inserts to a single row.
type ConsecutivityService struct {
	store        trackingStore
	incidents    incidentHistoryReader
	publisher    signalPublisher
	validator    *validator.Validate
	metrics      *MetricsService
	logger       *zap.Logger
	historyLimit int
	now          func() time.Time
}

// NewConsecutivityService wires the engine. historyLimit below 2 is raised to 2
// and a nil publisher discards signals.
func NewConsecutivityService(store trackingStore, incidents incidentHistoryReader, publisher signalPublisher, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, historyLimit int) *ConsecutivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = discardPublisher{}
	}
	if historyLimit < 2 {
		historyLimit = 2
	}
	svc := &ConsecutivityService{
		store:        store,
		incidents:    incidents,
		publisher:    publisher,
		validator:    validate,
		metrics:      metrics,
		logger:       logger,
		historyLimit: historyLimit,
		now:          time.Now,
	}
	svc.validator.RegisterValidation("tracking_kind", func(fl validator.FieldLevel) bool {
		return models.TrackingKind(fl.Field().String()).Valid()
	})
	svc.validator.RegisterValidation("attendance_outcome", func(fl validator.FieldLevel) bool {
		return models.AttendanceOutcome(fl.Field().String()).Valid()
	})
	return svc
}

type absenceUpdate struct {
	StudentID   string `validate:"required"`
	ReferenceID string `validate:"required"`
	Outcome     string `validate:"required,attendance_outcome"`
}

type behavioralUpdate struct {
	StudentID    string `validate:"required"`
	ReferenceID  string `validate:"required"`
	IncidentKind string `validate:"required"`
}

type trackingQuery struct {
	StudentID string `validate:"required"`
	Kind      string `validate:"required,tracking_kind"`
}

// UpdateAbsenceTracking applies one attendance outcome to the absence streak.
// ABSENT continues the streak, PRESENT resets it to zero.
func (s *ConsecutivityService) UpdateAbsenceTracking(ctx context.Context, studentID, referenceID string, outcome models.AttendanceOutcome) (*models.TrackingRecord, error) {
	req := absenceUpdate{
		StudentID:   strings.TrimSpace(studentID),
		ReferenceID: strings.TrimSpace(referenceID),
		Outcome:     string(outcome),
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence tracking payload")
	}

	current, err := s.store.Find(ctx, req.StudentID, models.TrackingKindAbsence)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTracking.Code, appErrors.ErrTracking.Status, "failed to load absence tracking")
	}

	next := 0
	if outcome == models.AttendanceOutcomeAbsent {
		next = countOf(current) + 1
	}
	return s.commit(ctx, current, req.StudentID, models.TrackingKindAbsence, req.ReferenceID, next)
}

// UpdateBehavioralTracking applies a freshly recorded incident to the
// behavioral streak. The incident must already be the newest entry of the
// student's history; the streak continues only when the entry right before it
// carries the same incident kind. An update whose incident is not the newest
// entry is rejected before the counter is touched.
func (s *ConsecutivityService) UpdateBehavioralTracking(ctx context.Context, studentID, referenceID, incidentKind string) (*models.TrackingRecord, error) {
	req := behavioralUpdate{
		StudentID:    strings.TrimSpace(studentID),
		ReferenceID:  strings.TrimSpace(referenceID),
		IncidentKind: strings.TrimSpace(incidentKind),
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid behavioral tracking payload")
	}

	history, err := s.incidents.IncidentsOf(ctx, req.StudentID, s.historyLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTracking.Code, appErrors.ErrTracking.Status, "failed to read incident history")
	}
	if len(history) == 0 || history[0].ReferenceID != req.ReferenceID || history[0].IncidentKind != req.IncidentKind {
		return nil, appErrors.Clone(appErrors.ErrValidation, "incident is not the newest in the student's history")
	}
	current, err := s.store.Find(ctx, req.StudentID, models.TrackingKindBehavioralIncident)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTracking.Code, appErrors.ErrTracking.Status, "failed to load behavioral tracking")
	}

	next := 1
	if len(history) > 1 && history[1].IncidentKind == req.IncidentKind {
		next = countOf(current) + 1
	}
	return s.commit(ctx, current, req.StudentID, models.TrackingKindBehavioralIncident, req.ReferenceID, next)
}

// ResetAllTracking zeroes every streak of the student. No signals are emitted.
func (s *ConsecutivityService) ResetAllTracking(ctx context.Context, studentID string) error {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.store.ResetAll(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTracking.Code, appErrors.ErrTracking.Status, "failed to reset tracking")
	}
	s.metrics.RecordReset()
	logger.WithContext(ctx, s.logger).Info("consecutivity tracking reset", zap.String("student_id", studentID))
	return nil
}

// GetConsecutiveCount returns the live streak, or 0 when nothing was tracked yet.
func (s *ConsecutivityService) GetConsecutiveCount(ctx context.Context, studentID string, kind models.TrackingKind) (int, error) {
	req := trackingQuery{StudentID: strings.TrimSpace(studentID), Kind: string(kind)}
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tracking query")
	}
	record, err := s.store.Find(ctx, req.StudentID, kind)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrTracking.Code, appErrors.ErrTracking.Status, "failed to load tracking")
	}
	return countOf(record), nil
}

// HasReached reports whether the live streak is at or above the threshold.
// ARCHIVAL only applies to absences.
func (s *ConsecutivityService) HasReached(ctx context.Context, studentID string, kind models.TrackingKind, threshold models.ThresholdKind) (bool, error) {
	value, ok := models.ThresholdValue(kind, threshold)
	if !ok {
		return false, appErrors.Clone(appErrors.ErrValidation, "threshold "+string(threshold)+" does not apply to "+string(kind))
	}
	count, err := s.GetConsecutiveCount(ctx, studentID, kind)
	if err != nil {
		return false, err
	}
	return count >= value, nil
}

// HasReachedWarningThreshold reports count >= 2 for the given kind.
func (s *ConsecutivityService) HasReachedWarningThreshold(ctx context.Context, studentID string, kind models.TrackingKind) (bool, error) {
	return s.HasReached(ctx, studentID, kind, models.ThresholdWarning)
}

// HasReachedArchivalThreshold reports absence count >= 3.
func (s *ConsecutivityService) HasReachedArchivalThreshold(ctx context.Context, studentID string) (bool, error) {
	return s.HasReached(ctx, studentID, models.TrackingKindAbsence, models.ThresholdArchival)
}

// Summary reads both streaks of a student.
func (s *ConsecutivityService) Summary(ctx context.Context, studentID string) (*models.ConsecutivitySummary, error) {
	absences, err := s.GetConsecutiveCount(ctx, studentID, models.TrackingKindAbsence)
	if err != nil {
		return nil, err
	}
	behavioral, err := s.GetConsecutiveCount(ctx, studentID, models.TrackingKindBehavioralIncident)
	if err != nil {
		return nil, err
	}
	return &models.ConsecutivitySummary{
		StudentID:         strings.TrimSpace(studentID),
		AbsenceCount:      absences,
		BehavioralCount:   behavioral,
		AbsenceWarning:    absences >= models.WarningThreshold,
		AbsenceArchival:   absences >= models.ArchivalThreshold,
		BehavioralWarning: behavioral >= models.WarningThreshold,
	}, nil
}

// commit persists the next value and publishes. Nothing is published when the
// write fails.
func (s *ConsecutivityService) commit(ctx context.Context, current *models.TrackingRecord, studentID string, kind models.TrackingKind, referenceID string, next int) (*models.TrackingRecord, error) {
	record := &models.TrackingRecord{
		StudentID:        studentID,
		Kind:             kind,
		ConsecutiveCount: next,
		LastReferenceID:  referenceID,
		LastUpdatedAt:    s.now().UTC(),
	}
	if current != nil {
		record.ID = current.ID
	}
	stored, err := s.store.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTracking.Code, appErrors.ErrTracking.Status, "failed to persist "+strings.ToLower(string(kind))+" tracking")
	}
	s.metrics.RecordConsecutivityUpdate(kind)

	log := logger.WithContext(ctx, s.logger).With(
		zap.String("student_id", studentID),
		zap.String("kind", string(kind)),
		zap.Int("count", stored.ConsecutiveCount),
	)
	log.Debug("consecutivity updated", zap.Int("previous", countOf(current)), zap.String("reference_id", referenceID))

	s.publisher.Publish(ctx, events.ConsecutivityUpdated{
		StudentID:   studentID,
		Kind:        kind,
		NewCount:    stored.ConsecutiveCount,
		ReferenceID: referenceID,
		Timestamp:   record.LastUpdatedAt,
	})

	if thresholdKind, threshold, ok := models.DetectThreshold(kind, stored.ConsecutiveCount); ok {
		s.metrics.RecordThresholdReached(kind, thresholdKind)
		log.Info("consecutive threshold reached", zap.String("threshold_kind", string(thresholdKind)))
		s.publisher.Publish(ctx, events.ConsecutiveThresholdReached{
			StudentID:     studentID,
			Kind:          kind,
			NewCount:      stored.ConsecutiveCount,
			Threshold:     threshold,
			ThresholdKind: thresholdKind,
			Timestamp:     record.LastUpdatedAt,
		})
	}
	return stored, nil
}

func countOf(record *models.TrackingRecord) int {
	if record == nil {
		return 0
	}
	return record.ConsecutiveCount
}
