package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

const migrationTable = "schema_migrations"

// Migrations returns the schema owned by this service in version order.
// The students table is shared with the roster service and only created here
// when missing so that a standalone deployment can run.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "students",
			UpSQL: `CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    nis TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		},
		{
			Version: 2,
			Name:    "consecutivity_tracking",
			UpSQL: `CREATE TABLE IF NOT EXISTS consecutivity_tracking (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL,
    tracking_kind TEXT NOT NULL,
    consecutive_count INTEGER NOT NULL DEFAULT 0,
    last_reference_id TEXT,
    last_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT consecutivity_tracking_student_kind UNIQUE (student_id, tracking_kind),
    CONSTRAINT consecutivity_tracking_kind CHECK (tracking_kind IN ('ABSENCE', 'BEHAVIORAL_INCIDENT')),
    CONSTRAINT consecutivity_tracking_count CHECK (consecutive_count >= 0)
)`,
		},
		{
			Version: 3,
			Name:    "behavior_incidents",
			UpSQL: `CREATE TABLE IF NOT EXISTS behavior_incidents (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL NOT NULL,
    student_id TEXT NOT NULL,
    lesson_id TEXT NOT NULL,
    incident_kind TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    recorded_by TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_behavior_incidents_student_recency
    ON behavior_incidents (student_id, occurred_at DESC, seq DESC)`,
		},
		{
			Version: 4,
			Name:    "lesson_attendance",
			UpSQL: `CREATE TABLE IF NOT EXISTS lesson_attendance (
    id TEXT PRIMARY KEY,
    lesson_id TEXT NOT NULL,
    student_id TEXT NOT NULL,
    status TEXT NOT NULL,
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT lesson_attendance_lesson_student UNIQUE (lesson_id, student_id),
    CONSTRAINT lesson_attendance_status CHECK (status IN ('H', 'S', 'I', 'A'))
)`,
		},
	}
}

// Migrate applies every pending migration, each inside its own transaction,
// and returns the versions it applied.
func Migrate(ctx context.Context, db *sqlx.DB, migrations []Migration) ([]int, error) {
	ensure := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, migrationTable)
	if _, err := db.ExecContext(ctx, ensure); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	var versions []int
	if err := db.SelectContext(ctx, &versions, fmt.Sprintf("SELECT version FROM %s ORDER BY version", migrationTable)); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	applied := make(map[int]struct{}, len(versions))
	for _, v := range versions {
		applied[v] = struct{}{}
	}

	var done []int
	for _, mig := range migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if err := apply(ctx, db, mig); err != nil {
			return done, err
		}
		done = append(done, mig.Version)
	}
	return done, nil
}

func apply(ctx context.Context, db *sqlx.DB, mig Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", mig.Version, err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, mig.UpSQL); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", migrationTable), mig.Version, mig.Name); err != nil {
		return fmt.Errorf("record migration %d: %w", mig.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", mig.Version, err)
	}
	commit = true
	return nil
}
