package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lipohub/tg-planner-bot/internal/db"
	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// SQLiteUserRepo implements UserRepo.
type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(db db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) Touch(ctx context.Context, u domain.User) error {
	lastActive := u.LastActive
	if lastActive.IsZero() {
		lastActive = clock()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, full_name, last_active) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			username = CASE WHEN excluded.username != '' THEN excluded.username ELSE users.username END,
			full_name = CASE WHEN excluded.full_name != '' THEN excluded.full_name ELSE users.full_name END,
			last_active = excluded.last_active`,
		u.ID, u.Username, u.FullName, formatStored(lastActive))
	if err != nil {
		return fmt.Errorf("touching user %d: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteUserRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	var (
		u          domain.User
		lastActive string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, full_name, last_active FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.FullName, &lastActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.LastActive = parseStored(lastActive)
	return &u, nil
}
