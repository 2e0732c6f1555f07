package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lipohub/tg-planner-bot/internal/db"
	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const defaultGoalStatus = "active"

// SQLiteGoalRepo implements GoalRepo. Steps are stored as a JSON array.
type SQLiteGoalRepo struct {
	db db.DBTX
}

func NewSQLiteGoalRepo(db db.DBTX) *SQLiteGoalRepo {
	return &SQLiteGoalRepo{db: db}
}

func (r *SQLiteGoalRepo) Save(ctx context.Context, g domain.Goal) (int64, error) {
	steps := g.Steps
	if steps == nil {
		steps = []string{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return 0, fmt.Errorf("encoding goal steps: %w", err)
	}
	status := domain.CoalesceStr(g.Status, defaultGoalStatus)
	created := g.CreatedAt
	if created.IsZero() {
		created = clock()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, goal_text, deadline, steps, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.UserID, g.GoalText, nullableString(g.Deadline), string(stepsJSON), status, formatStored(created))
	if err != nil {
		return 0, fmt.Errorf("inserting goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading goal id: %w", err)
	}
	return id, nil
}

func (r *SQLiteGoalRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, goal_text, deadline, steps, status, created_at
		 FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		var (
			g                domain.Goal
			deadline         sql.NullString
			steps, createdAt string
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.GoalText, &deadline, &steps, &g.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		g.Deadline = stringPtr(deadline)
		if err := json.Unmarshal([]byte(steps), &g.Steps); err != nil {
			return nil, fmt.Errorf("decoding steps of goal %d: %w", g.ID, err)
		}
		g.CreatedAt = parseStored(createdAt)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}
	return out, nil
}
