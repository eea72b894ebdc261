package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "H"
	AttendanceStatusSick    AttendanceStatus = "S"
	AttendanceStatusExcused AttendanceStatus = "I"
	AttendanceStatusAbsent  AttendanceStatus = "A"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusSick, AttendanceStatusExcused, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Outcome maps a status onto the absence streak. Sick and excused marks are
// not tracked and report false.
func (s AttendanceStatus) Outcome() (AttendanceOutcome, bool) {
	switch s {
	case AttendanceStatusPresent:
		return AttendanceOutcomePresent, true
	case AttendanceStatusAbsent:
		return AttendanceOutcomeAbsent, true
	default:
		return "", false
	}
}

// LessonAttendance is one student's mark for a completed lesson.
type LessonAttendance struct {
	ID        string           `db:"id" json:"id"`
	LessonID  string           `db:"lesson_id" json:"lesson_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// LessonAttendanceResult pairs a stored mark with the absence streak it produced.
type LessonAttendanceResult struct {
	Attendance LessonAttendance `json:"attendance"`
	Tracking   *TrackingRecord  `json:"tracking,omitempty"`
}
