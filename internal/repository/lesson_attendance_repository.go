package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

// LessonAttendanceRepository handles persistence for per-lesson attendance marks.
type LessonAttendanceRepository struct {
	db *sqlx.DB
}

// NewLessonAttendanceRepository constructs the repository.
func NewLessonAttendanceRepository(db *sqlx.DB) *LessonAttendanceRepository {
	return &LessonAttendanceRepository{db: db}
}

// Upsert inserts or updates the mark of a student for a lesson.
func (r *LessonAttendanceRepository) Upsert(ctx context.Context, record *models.LessonAttendance) (*models.LessonAttendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO lesson_attendance (id, lesson_id, student_id, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (lesson_id, student_id)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
RETURNING id, lesson_id, student_id, status, notes, created_at, updated_at`
	var stored models.LessonAttendance
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.LessonID, record.StudentID, record.Status, record.Notes, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert lesson attendance: %w", err)
	}
	return &stored, nil
}

// ListByLesson returns every mark recorded for a lesson.
func (r *LessonAttendanceRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.LessonAttendance, error) {
	const query = `SELECT id, lesson_id, student_id, status, notes, created_at, updated_at
FROM lesson_attendance WHERE lesson_id = $1 ORDER BY student_id`
	var rows []models.LessonAttendance
	if err := r.db.SelectContext(ctx, &rows, query, lessonID); err != nil {
		return nil, fmt.Errorf("list lesson attendance: %w", err)
	}
	return rows, nil
}
