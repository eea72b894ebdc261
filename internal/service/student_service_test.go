package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
)

type mockStudentRepo struct {
	students  map[string]models.Student
	setActive []bool
	err       error
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) SetActive(ctx context.Context, id string, active bool) error {
	if m.err != nil {
		return m.err
	}
	m.setActive = append(m.setActive, active)
	s := m.students[id]
	s.Active = active
	m.students[id] = s
	return nil
}

func newStudentFixture(t *testing.T, active bool) (*StudentService, *mockStudentRepo, *consecutivityFixture) {
	t.Helper()
	engine := newConsecutivityFixture(t)
	repo := &mockStudentRepo{students: map[string]models.Student{"S1": {ID: "S1", NIS: "111", FullName: "Siti", Active: active}}}
	return NewStudentService(repo, engine.svc, zap.NewNop()), repo, engine
}

func TestStudentServiceArchive(t *testing.T) {
	svc, repo, engine := newStudentFixture(t, true)
	engine.store.records[trackingKey{"S1", models.TrackingKindAbsence}] = models.TrackingRecord{StudentID: "S1", Kind: models.TrackingKindAbsence, ConsecutiveCount: 3}

	student, err := svc.Archive(context.Background(), "S1")
	require.NoError(t, err)
	assert.False(t, student.Active)
	assert.Equal(t, []bool{false}, repo.setActive)
	assert.Equal(t, 3, engine.store.count("S1", models.TrackingKindAbsence))

	_, err = svc.Archive(context.Background(), "S1")
	require.NoError(t, err)
	assert.Len(t, repo.setActive, 1)
}

func TestStudentServiceRestoreResetsTracking(t *testing.T) {
	svc, repo, engine := newStudentFixture(t, false)
	engine.store.records[trackingKey{"S1", models.TrackingKindAbsence}] = models.TrackingRecord{StudentID: "S1", Kind: models.TrackingKindAbsence, ConsecutiveCount: 3}
	engine.store.records[trackingKey{"S1", models.TrackingKindBehavioralIncident}] = models.TrackingRecord{StudentID: "S1", Kind: models.TrackingKindBehavioralIncident, ConsecutiveCount: 2}

	student, err := svc.Restore(context.Background(), "S1")
	require.NoError(t, err)
	assert.True(t, student.Active)
	assert.Equal(t, []bool{true}, repo.setActive)
	assert.Zero(t, engine.store.count("S1", models.TrackingKindAbsence))
	assert.Zero(t, engine.store.count("S1", models.TrackingKindBehavioralIncident))
	assert.Empty(t, engine.publisher.signals)

	rec, err := engine.svc.UpdateAbsenceTracking(context.Background(), "S1", "L10", models.AttendanceOutcomeAbsent)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ConsecutiveCount)
}

func TestStudentServiceNotFound(t *testing.T) {
	svc, _, _ := newStudentFixture(t, true)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Restore(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceRestoreFailures(t *testing.T) {
	svc, repo, engine := newStudentFixture(t, false)
	repo.err = errors.New("update failed")

	_, err := svc.Restore(context.Background(), "S1")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, engine.store.resets)

	repo.err = nil
	engine.store.resetErr = errors.New("reset failed")
	_, err = svc.Restore(context.Background(), "S1")
	assert.ErrorIs(t, err, appErrors.ErrTracking)
}
