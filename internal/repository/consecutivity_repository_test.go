package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var trackingRowColumns = []string{"id", "student_id", "tracking_kind", "consecutive_count", "last_reference_id", "last_updated_at"}

func TestConsecutivityRepositoryFind(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewConsecutivityRepository(db)

	updated := time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM consecutivity_tracking WHERE student_id = $1 AND tracking_kind = $2")).
		WithArgs("student-1", models.TrackingKindAbsence).
		WillReturnRows(sqlmock.NewRows(trackingRowColumns).AddRow("t1", "student-1", "ABSENCE", 2, "lesson-9", updated))

	record, err := repo.Find(context.Background(), "student-1", models.TrackingKindAbsence)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.TrackingKindAbsence, record.Kind)
	assert.Equal(t, 2, record.ConsecutiveCount)
	assert.Equal(t, "lesson-9", record.LastReferenceID)
	assert.True(t, updated.Equal(record.LastUpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsecutivityRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewConsecutivityRepository(db)

	mock.ExpectQuery("FROM consecutivity_tracking").
		WithArgs("student-1", models.TrackingKindBehavioralIncident).
		WillReturnError(sql.ErrNoRows)

	record, err := repo.Find(context.Background(), "student-1", models.TrackingKindBehavioralIncident)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsecutivityRepositoryFindError(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewConsecutivityRepository(db)

	mock.ExpectQuery("FROM consecutivity_tracking").WillReturnError(errors.New("connection reset"))

	_, err := repo.Find(context.Background(), "student-1", models.TrackingKindAbsence)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find consecutivity tracking")
}

func TestConsecutivityRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewConsecutivityRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, tracking_kind)")).
		WithArgs(sqlmock.AnyArg(), "student-1", models.TrackingKindAbsence, 3, sql.NullString{String: "lesson-3", Valid: true}, now).
		WillReturnRows(sqlmock.NewRows(trackingRowColumns).AddRow("existing-id", "student-1", "ABSENCE", 3, "lesson-3", now))

	stored, err := repo.Upsert(context.Background(), &models.TrackingRecord{
		StudentID:        "student-1",
		Kind:             models.TrackingKindAbsence,
		ConsecutiveCount: 3,
		LastReferenceID:  "lesson-3",
		LastUpdatedAt:    now,
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", stored.ID)
	assert.Equal(t, 3, stored.ConsecutiveCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsecutivityRepositoryUpsertNullReference(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewConsecutivityRepository(db)

	mock.ExpectQuery("INSERT INTO consecutivity_tracking").
		WithArgs(sqlmock.AnyArg(), "student-1", models.TrackingKindAbsence, 0, sql.NullString{}, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(trackingRowColumns).AddRow("id", "student-1", "ABSENCE", 0, nil, time.Now()))

	stored, err := repo.Upsert(context.Background(), &models.TrackingRecord{StudentID: "student-1", Kind: models.TrackingKindAbsence})
	require.NoError(t, err)
	assert.Empty(t, stored.LastReferenceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsecutivityRepositoryResetAll(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewConsecutivityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE consecutivity_tracking SET consecutive_count = 0, last_updated_at = $2 WHERE student_id = $1")).
		WithArgs("student-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ResetAll(context.Background(), "student-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
