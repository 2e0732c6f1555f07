package repository

import (
	"context"
	"fmt"

	"github.com/lipohub/tg-planner-bot/internal/db"
	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// SQLiteGraphRepo implements GraphRepo over graph_history.
type SQLiteGraphRepo struct {
	db db.DBTX
}

func NewSQLiteGraphRepo(db db.DBTX) *SQLiteGraphRepo {
	return &SQLiteGraphRepo{db: db}
}

func (r *SQLiteGraphRepo) Save(ctx context.Context, g domain.GraphRecord) (int64, error) {
	created := g.CreatedAt
	if created.IsZero() {
		created = clock()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO graph_history (user_id, graph_type, file_path, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.UserID, string(g.GraphType), g.FilePath, g.Title, formatStored(created))
	if err != nil {
		return 0, fmt.Errorf("inserting graph record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading graph record id: %w", err)
	}
	return id, nil
}

func (r *SQLiteGraphRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.GraphRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, graph_type, file_path, title, created_at
		 FROM graph_history WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing graph history: %w", err)
	}
	defer rows.Close()

	var out []domain.GraphRecord
	for rows.Next() {
		var (
			g                    domain.GraphRecord
			graphType, createdAt string
		)
		if err := rows.Scan(&g.ID, &g.UserID, &graphType, &g.FilePath, &g.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning graph record: %w", err)
		}
		g.GraphType = domain.GraphType(graphType)
		g.CreatedAt = parseStored(createdAt)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating graph history: %w", err)
	}
	return out, nil
}
