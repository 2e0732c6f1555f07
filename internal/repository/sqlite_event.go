package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lipohub/tg-planner-bot/internal/db"
	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// SQLiteEventRepo implements EventRepo.
type SQLiteEventRepo struct {
	db db.DBTX
}

func NewSQLiteEventRepo(db db.DBTX) *SQLiteEventRepo {
	return &SQLiteEventRepo{db: db}
}

func (r *SQLiteEventRepo) Add(ctx context.Context, ev NewEvent) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (user_id, raw_text, event_type, title, start_time, end_time, description, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.UserID,
		ev.RawText,
		string(ev.EventType),
		ev.Title,
		nullableTime(ev.StartTime),
		nullableTime(ev.EndTime),
		ev.Description,
		nullableBytes(ev.Payload),
		formatStored(clock()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading event id: %w", err)
	}
	return id, nil
}

func (r *SQLiteEventRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.StoredEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, raw_text, event_type, title, start_time, end_time, description, payload, created_at
		 FROM events WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredEvent
	for rows.Next() {
		var (
			ev                   domain.StoredEvent
			eventType, createdAt string
			start, end, payload  sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.RawText, &eventType, &ev.Title,
			&start, &end, &ev.Description, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.EventType = domain.PlanType(eventType)
		ev.StartTime = parseNullableTime(start)
		ev.EndTime = parseNullableTime(end)
		if payload.Valid {
			ev.Payload = []byte(payload.String)
		}
		ev.CreatedAt = parseStored(createdAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}
