package models

import "time"

// BehaviorIncident captures one recorded behavioral incident for a student.
type BehaviorIncident struct {
	ID           string    `db:"id" json:"id"`
	Seq          int64     `db:"seq" json:"-"`
	StudentID    string    `db:"student_id" json:"student_id"`
	LessonID     string    `db:"lesson_id" json:"lesson_id"`
	IncidentKind string    `db:"incident_kind" json:"incident_kind"`
	Description  string    `db:"description" json:"description"`
	RecordedBy   string    `db:"recorded_by" json:"recorded_by"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// BehaviorIncidentFilter allows listing incidents.
type BehaviorIncidentFilter struct {
	StudentID     string
	IncidentKinds []string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PageSize      int
}

const (
	DefaultIncidentPageSize = 50
	MaxIncidentPageSize     = 200
)

// Normalize applies paging defaults: page 1, 50 per page, at most 200 per page.
func (f BehaviorIncidentFilter) Normalize() BehaviorIncidentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = DefaultIncidentPageSize
	case f.PageSize > MaxIncidentPageSize:
		f.PageSize = MaxIncidentPageSize
	}
	return f
}
