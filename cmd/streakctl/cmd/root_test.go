package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	"github.com/husseinvr97/fasee7System-sub002/internal/service"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "count", "reset", "token"}, names)
}

func TestTokenCommandSignsWithConfiguredSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--user", "u7", "--role", "teacher"})

	require.NoError(t, root.Execute())

	claims, err := service.NewAuthService(service.AuthConfig{AccessTokenSecret: "cli-secret"}).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u7", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestTokenCommandRejectsUnknownRole(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--role", "student"})

	assert.Error(t, root.Execute())
}

func TestCountCommandRejectsUnknownKindBeforeConnecting(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"count", "S1", "grades"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tracking kind")
}

type stubStreaks struct {
	count          int
	warning        bool
	archival       bool
	archivalCalled int
	err            error
}

func (s *stubStreaks) GetConsecutiveCount(ctx context.Context, studentID string, kind models.TrackingKind) (int, error) {
	return s.count, s.err
}

func (s *stubStreaks) HasReachedWarningThreshold(ctx context.Context, studentID string, kind models.TrackingKind) (bool, error) {
	return s.warning, nil
}

func (s *stubStreaks) HasReachedArchivalThreshold(ctx context.Context, studentID string) (bool, error) {
	s.archivalCalled++
	return s.archival, nil
}

func TestReadStreakUsesQueryFlags(t *testing.T) {
	ctx := context.Background()

	stub := &stubStreaks{count: 3, warning: true, archival: true}
	streak, err := readStreak(ctx, stub, "S1", models.TrackingKindAbsence)
	require.NoError(t, err)
	assert.Equal(t, "ABSENCE              3  WARNING  ARCHIVAL", formatCount(streak))

	// the archival flag comes from the query service, not from the count
	stub = &stubStreaks{count: 3, warning: true, archival: false}
	streak, err = readStreak(ctx, stub, "S1", models.TrackingKindAbsence)
	require.NoError(t, err)
	assert.Equal(t, "ABSENCE              3  WARNING", formatCount(streak))

	stub = &stubStreaks{count: 1}
	streak, err = readStreak(ctx, stub, "S1", models.TrackingKindBehavioralIncident)
	require.NoError(t, err)
	assert.Equal(t, "BEHAVIORAL_INCIDENT  1", formatCount(streak))
	assert.Zero(t, stub.archivalCalled)
	assert.Nil(t, streak.ArchivalReached)
}

func TestReadStreakPropagatesErrors(t *testing.T) {
	_, err := readStreak(context.Background(), &stubStreaks{err: errors.New("db down")}, "S1", models.TrackingKindAbsence)
	assert.EqualError(t, err, "db down")
}
