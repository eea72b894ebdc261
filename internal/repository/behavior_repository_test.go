package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

func TestBehaviorRepositoryIncidentsOf(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY occurred_at DESC, seq DESC LIMIT $2")).
		WithArgs("student-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "lesson_id", "incident_kind", "occurred_at"}).
			AddRow("student-1", "lesson-2", "late", now).
			AddRow("student-1", "lesson-1", "disrespectful", now.Add(-time.Hour)))

	history, err := repo.IncidentsOf(context.Background(), "student-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "late", history[0].IncidentKind)
	assert.Equal(t, "lesson-1", history[1].ReferenceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryIncidentsOfDefaultsLimit(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectQuery("FROM behavior_incidents").
		WithArgs("student-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "lesson_id", "incident_kind", "occurred_at"}))

	history, err := repo.IncidentsOf(context.Background(), "student-1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectQuery("INSERT INTO behavior_incidents").
		WithArgs(sqlmock.AnyArg(), "student-1", "lesson-1", "late", "", "teacher-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(17))

	incident := &models.BehaviorIncident{StudentID: "student-1", LessonID: "lesson-1", IncidentKind: "late", RecordedBy: "teacher-1"}
	require.NoError(t, repo.Create(context.Background(), incident))
	assert.NotEmpty(t, incident.ID)
	assert.Equal(t, int64(17), incident.Seq)
	assert.False(t, incident.OccurredAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryList(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM behavior_incidents WHERE 1=1 AND student_id = $1 ORDER BY occurred_at DESC, seq DESC LIMIT 50 OFFSET 0")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seq", "student_id", "lesson_id", "incident_kind", "description", "recorded_by", "occurred_at", "created_at"}).
			AddRow("i1", 1, "student-1", "lesson-1", "late", "", "teacher-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM behavior_incidents WHERE 1=1 AND student_id = $1")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	incidents, total, err := repo.List(context.Background(), models.BehaviorIncidentFilter{StudentID: "student-1"})
	require.NoError(t, err)
	assert.Len(t, incidents, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryListCapsPageSize(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY occurred_at DESC, seq DESC LIMIT 200 OFFSET 200")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seq", "student_id", "lesson_id", "incident_kind", "description", "recorded_by", "occurred_at", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM behavior_incidents WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.BehaviorIncidentFilter{Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
