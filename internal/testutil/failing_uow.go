package testutil

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lipohub/tg-planner-bot/internal/db"
)

// FailOnNthExecUoW wraps the real unit of work and makes the FailOn-th
// write inside the transaction return Err, counting from 1. When Match is
// set only statements containing it are counted. Reads always pass.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int
	Match  string
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	injected := u.Err
	if injected == nil {
		injected = errors.New("injected exec failure")
	}
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &execTrap{DBTX: tx, failOn: u.FailOn, match: u.Match, err: injected})
	})
}

type execTrap struct {
	db.DBTX
	seen   int
	failOn int
	match  string
	err    error
}

func (e *execTrap) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.match == "" || strings.Contains(query, e.match) {
		e.seen++
		if e.seen == e.failOn {
			return nil, e.err
		}
	}
	return e.DBTX.ExecContext(ctx, query, args...)
}
