package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

// BehaviorRepository manages persistence for behavioral incidents.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a new repository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// List returns incidents per provided filter, newest first.
func (r *BehaviorRepository) List(ctx context.Context, filter models.BehaviorIncidentFilter) ([]models.BehaviorIncident, int, error) {
	base := "FROM behavior_incidents"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("occurred_at <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if len(filter.IncidentKinds) > 0 {
		where = append(where, fmt.Sprintf("incident_kind = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.IncidentKinds))
	}
	whereClause := strings.Join(where, " AND ")
	filter = filter.Normalize()
	size := filter.PageSize
	offset := (filter.Page - 1) * size
	query := fmt.Sprintf(`SELECT id, seq, student_id, lesson_id, incident_kind, description, recorded_by, occurred_at, created_at
%s WHERE %s ORDER BY occurred_at DESC, seq DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var incidents []models.BehaviorIncident
	if err := r.db.SelectContext(ctx, &incidents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list behavior incidents: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count behavior incidents: %w", err)
	}
	return incidents, total, nil
}

// Create inserts a new incident and fills in its insertion sequence.
func (r *BehaviorRepository) Create(ctx context.Context, incident *models.BehaviorIncident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if incident.OccurredAt.IsZero() {
		incident.OccurredAt = now
	}
	incident.CreatedAt = now
	query := `INSERT INTO behavior_incidents (id, student_id, lesson_id, incident_kind, description, recorded_by, occurred_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING seq`
	if err := r.db.QueryRowxContext(ctx, query,
		incident.ID,
		incident.StudentID,
		incident.LessonID,
		incident.IncidentKind,
		incident.Description,
		incident.RecordedBy,
		incident.OccurredAt,
		incident.CreatedAt,
	).Scan(&incident.Seq); err != nil {
		return fmt.Errorf("create behavior incident: %w", err)
	}
	return nil
}

// IncidentsOf returns at most limit incidents of the student, newest first.
// Ties on occurred_at are broken by insertion order.
func (r *BehaviorRepository) IncidentsOf(ctx context.Context, studentID string, limit int) ([]models.IncidentRecord, error) {
	if limit <= 0 {
		limit = 2
	}
	const query = `SELECT student_id, lesson_id, incident_kind, occurred_at
FROM behavior_incidents WHERE student_id = $1
ORDER BY occurred_at DESC, seq DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("read incident history: %w", err)
	}
	defer rows.Close()

	history := make([]models.IncidentRecord, 0, limit)
	for rows.Next() {
		var rec models.IncidentRecord
		if err := rows.Scan(&rec.StudentID, &rec.ReferenceID, &rec.IncidentKind, &rec.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan incident history: %w", err)
		}
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident history: %w", err)
	}
	return history, nil
}
