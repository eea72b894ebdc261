// Package events carries the typed consecutivity signals and the in-process
// bus that delivers them to warning and archival consumers.
package events

import (
	"time"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

// SignalType identifies a signal variant.
type SignalType string

const (
	SignalConsecutivityUpdated SignalType = "consecutivity.updated"
	SignalThresholdReached     SignalType = "consecutivity.threshold_reached"
)

// Signal is implemented only by the variants declared in this package.
type Signal interface {
	Type() SignalType
	Subject() string
	OccurredAt() time.Time
	signal()
}

// ConsecutivityUpdated is emitted after every successful streak update.
type ConsecutivityUpdated struct {
	StudentID   string              `json:"student_id"`
	Kind        models.TrackingKind `json:"tracking_kind"`
	NewCount    int                 `json:"new_count"`
	ReferenceID string              `json:"reference_id"`
	Timestamp   time.Time           `json:"timestamp"`
}

func (ConsecutivityUpdated) Type() SignalType { return SignalConsecutivityUpdated }
func (s ConsecutivityUpdated) Subject() string { return s.StudentID }
func (s ConsecutivityUpdated) OccurredAt() time.Time { return s.Timestamp }
func (ConsecutivityUpdated) signal() {}

// ConsecutiveThresholdReached is emitted when a streak lands exactly on a threshold.
type ConsecutiveThresholdReached struct {
	StudentID     string               `json:"student_id"`
	Kind          models.TrackingKind  `json:"tracking_kind"`
	NewCount      int                  `json:"new_count"`
	Threshold     int                  `json:"threshold"`
	ThresholdKind models.ThresholdKind `json:"threshold_kind"`
	Timestamp     time.Time            `json:"timestamp"`
}

func (ConsecutiveThresholdReached) Type() SignalType { return SignalThresholdReached }
func (s ConsecutiveThresholdReached) Subject() string { return s.StudentID }
func (s ConsecutiveThresholdReached) OccurredAt() time.Time { return s.Timestamp }
func (ConsecutiveThresholdReached) signal() {}
