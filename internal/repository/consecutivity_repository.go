package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

// ConsecutivityRepository persists one streak counter per (student, kind).
type ConsecutivityRepository struct {
	db *sqlx.DB
}

// NewConsecutivityRepository constructs the repository.
func NewConsecutivityRepository(db *sqlx.DB) *ConsecutivityRepository {
	return &ConsecutivityRepository{db: db}
}

const trackingColumns = "id, student_id, tracking_kind, consecutive_count, last_reference_id, last_updated_at"

// Find returns the record for (studentID, kind), or nil when none exists yet.
func (r *ConsecutivityRepository) Find(ctx context.Context, studentID string, kind models.TrackingKind) (*models.TrackingRecord, error) {
	query := "SELECT " + trackingColumns + " FROM consecutivity_tracking WHERE student_id = $1 AND tracking_kind = $2"
	record, err := scanTrackingRecord(r.db.QueryRowxContext(ctx, query, studentID, kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find consecutivity tracking: %w", err)
	}
	return record, nil
}

// Upsert inserts the record or overwrites the counter of the existing row for
// the same (student, kind) pair.
func (r *ConsecutivityRepository) Upsert(ctx context.Context, record *models.TrackingRecord) (*models.TrackingRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.LastUpdatedAt.IsZero() {
		record.LastUpdatedAt = time.Now().UTC()
	}
	query := `INSERT INTO consecutivity_tracking (` + trackingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, tracking_kind)
DO UPDATE SET consecutive_count = EXCLUDED.consecutive_count, last_reference_id = EXCLUDED.last_reference_id, last_updated_at = EXCLUDED.last_updated_at
RETURNING ` + trackingColumns
	stored, err := scanTrackingRecord(r.db.QueryRowxContext(ctx, query,
		record.ID,
		record.StudentID,
		record.Kind,
		record.ConsecutiveCount,
		nullableString(record.LastReferenceID),
		record.LastUpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert consecutivity tracking: %w", err)
	}
	return stored, nil
}

// ResetAll zeroes every counter of the student. Rows are kept.
func (r *ConsecutivityRepository) ResetAll(ctx context.Context, studentID string) error {
	const query = `UPDATE consecutivity_tracking SET consecutive_count = 0, last_updated_at = $2 WHERE student_id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reset consecutivity tracking: %w", err)
	}
	return nil
}

func scanTrackingRecord(row *sqlx.Row) (*models.TrackingRecord, error) {
	var (
		record  models.TrackingRecord
		kind    string
		lastRef sql.NullString
	)
	if err := row.Scan(&record.ID, &record.StudentID, &kind, &record.ConsecutiveCount, &lastRef, &record.LastUpdatedAt); err != nil {
		return nil, err
	}
	record.Kind = models.TrackingKind(kind)
	if lastRef.Valid {
		record.LastReferenceID = lastRef.String
	}
	return &record, nil
}

func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
