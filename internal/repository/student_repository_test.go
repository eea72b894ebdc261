package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nis, full_name, active, created_at, updated_at FROM students WHERE id = $1")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nis", "full_name", "active", "created_at", "updated_at"}).
			AddRow("student-1", "001", "Student", false, time.Now(), time.Now()))

	student, err := repo.FindByID(context.Background(), "student-1")
	require.NoError(t, err)
	assert.False(t, student.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("student-1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetActive(context.Background(), "student-1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
