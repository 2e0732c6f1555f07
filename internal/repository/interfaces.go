package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// NewEvent is the input to EventRepo.Add. Optional columns stay NULL when
// their pointer is nil or their slice is empty.
type NewEvent struct {
	UserID      int64
	RawText     string
	EventType   domain.PlanType
	Title       string
	StartTime   *time.Time
	EndTime     *time.Time
	Description string
	Payload     []byte
}

type UserRepo interface {
	// Touch inserts the user or refreshes its names and last_active.
	Touch(ctx context.Context, u domain.User) error
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type EventRepo interface {
	Add(ctx context.Context, ev NewEvent) (int64, error)
	// ListRecent returns at most limit events, most recent first.
	ListRecent(ctx context.Context, userID int64, limit int) ([]domain.StoredEvent, error)
}

type GoalRepo interface {
	Save(ctx context.Context, g domain.Goal) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Goal, error)
}

type GraphRepo interface {
	Save(ctx context.Context, g domain.GraphRecord) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.GraphRecord, error)
}
