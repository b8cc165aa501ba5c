package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

const dbTimeout = 5 * time.Second

// PostgresLogger appends events to the classroom_activity table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

// NewPostgresLogger creates the activity table if needed.
func NewPostgresLogger(ctx context.Context, pool *pgxpool.Pool) (*PostgresLogger, error) {
	if pool == nil {
		return nil, fmt.Errorf("activity logger pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS classroom_activity (
		   id         BIGSERIAL PRIMARY KEY,
		   event_type TEXT NOT NULL,
		   entity     TEXT NOT NULL,
		   record_id  BIGINT NOT NULL,
		   name       TEXT NOT NULL DEFAULT '',
		   teacher_id BIGINT NOT NULL DEFAULT 0,
		   created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`,
	); err != nil {
		return nil, fmt.Errorf("create activity table: %w", err)
	}
	return &PostgresLogger{pool: pool}, nil
}

func (l *PostgresLogger) Log(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("activity logger pool is nil")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx,
		`INSERT INTO classroom_activity (event_type, entity, record_id, name, teacher_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.Type,
		event.Entity,
		int64(event.RecordID),
		event.Name,
		int64(event.TeacherID),
		createdAt,
	); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	slog.Debug("activity logged",
		"type", event.Type,
		"entity", event.Entity,
		"record_id", event.RecordID,
	)
	return nil
}

// Recent loads the newest limit events, oldest first, ready for Feed.Preload.
func (l *PostgresLogger) Recent(ctx context.Context, limit int) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := l.pool.Query(ctx,
		`SELECT event_type, entity, record_id, name, teacher_id, created_at
		 FROM (
		   SELECT * FROM classroom_activity ORDER BY id DESC LIMIT $1
		 ) recent
		 ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e                   Event
			recordID, teacherID int64
		)
		if err := rows.Scan(&e.Type, &e.Entity, &recordID, &e.Name, &teacherID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.RecordID = classroom.ID(recordID)
		e.TeacherID = classroom.ID(teacherID)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return events, nil
}
