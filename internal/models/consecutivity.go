package models

import (
	"strings"
	"time"
)

// TrackingKind identifies which streak a tracking record counts.
type TrackingKind string

const (
	TrackingKindAbsence            TrackingKind = "ABSENCE"
	TrackingKindBehavioralIncident TrackingKind = "BEHAVIORAL_INCIDENT"
)

// Valid reports whether the kind is supported.
func (k TrackingKind) Valid() bool {
	switch k {
	case TrackingKindAbsence, TrackingKindBehavioralIncident:
		return true
	default:
		return false
	}
}

// ParseTrackingKind accepts the canonical names plus the short aliases used in URLs.
func ParseTrackingKind(raw string) (TrackingKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "absence", "absences":
		return TrackingKindAbsence, true
	case "behavioral_incident", "behavioral", "behavior", "behaviour":
		return TrackingKindBehavioralIncident, true
	default:
		return "", false
	}
}

// TrackingKinds lists every kind in a stable order.
func TrackingKinds() []TrackingKind {
	return []TrackingKind{TrackingKindAbsence, TrackingKindBehavioralIncident}
}

// ThresholdKind names the severity level a streak can cross.
type ThresholdKind string

const (
	ThresholdWarning  ThresholdKind = "WARNING"
	ThresholdArchival ThresholdKind = "ARCHIVAL"
)

const (
	// WarningThreshold applies to both tracking kinds.
	WarningThreshold = 2
	// ArchivalThreshold applies to absences only.
	ArchivalThreshold = 3
)

// ThresholdValue returns the streak value for a threshold kind, and false when
// the threshold does not apply to the tracking kind.
func ThresholdValue(kind TrackingKind, threshold ThresholdKind) (int, bool) {
	switch threshold {
	case ThresholdWarning:
		if kind.Valid() {
			return WarningThreshold, true
		}
	case ThresholdArchival:
		if kind == TrackingKindAbsence {
			return ArchivalThreshold, true
		}
	}
	return 0, false
}

// DetectThreshold maps a freshly computed streak value to at most one threshold.
// Only exact matches fire; values above the archival threshold do not re-signal.
func DetectThreshold(kind TrackingKind, count int) (ThresholdKind, int, bool) {
	switch kind {
	case TrackingKindAbsence:
		switch count {
		case WarningThreshold:
			return ThresholdWarning, WarningThreshold, true
		case ArchivalThreshold:
			return ThresholdArchival, ArchivalThreshold, true
		}
	case TrackingKindBehavioralIncident:
		if count == WarningThreshold {
			return ThresholdWarning, WarningThreshold, true
		}
	}
	return "", 0, false
}

// AttendanceOutcome is the tracked view of a lesson attendance mark.
type AttendanceOutcome string

const (
	AttendanceOutcomePresent AttendanceOutcome = "PRESENT"
	AttendanceOutcomeAbsent  AttendanceOutcome = "ABSENT"
)

// Valid reports whether the outcome is supported.
func (o AttendanceOutcome) Valid() bool {
	return o == AttendanceOutcomePresent || o == AttendanceOutcomeAbsent
}

// TrackingRecord is the persisted streak counter for one (student, kind) pair.
type TrackingRecord struct {
	ID               string       `json:"id"`
	StudentID        string       `json:"student_id"`
	Kind             TrackingKind `json:"tracking_kind"`
	ConsecutiveCount int          `json:"consecutive_count"`
	LastReferenceID  string       `json:"last_reference_id,omitempty"`
	LastUpdatedAt    time.Time    `json:"last_updated_at"`
}

// IncidentRecord is the read-only projection of a recorded behavioral incident.
type IncidentRecord struct {
	StudentID    string    `json:"student_id"`
	ReferenceID  string    `json:"reference_id"`
	IncidentKind string    `json:"incident_kind"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ConsecutivitySummary combines the live counters and threshold flags of a student.
type ConsecutivitySummary struct {
	StudentID         string `json:"student_id"`
	AbsenceCount      int    `json:"absence_count"`
	BehavioralCount   int    `json:"behavioral_count"`
	AbsenceWarning    bool   `json:"absence_warning"`
	AbsenceArchival   bool   `json:"absence_archival"`
	BehavioralWarning bool   `json:"behavioral_warning"`
}

// ConsecutiveCount is the single-kind view served per student.
type ConsecutiveCount struct {
	StudentID       string       `json:"student_id"`
	Kind            TrackingKind `json:"tracking_kind"`
	Count           int          `json:"count"`
	WarningReached  bool         `json:"warning_reached"`
	ArchivalReached *bool        `json:"archival_reached,omitempty"`
}
