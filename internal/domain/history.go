package domain

import "time"

type User struct {
	ID         int64
	Username   string
	FullName   string
	LastActive time.Time
}

// StoredEvent is one row of a user's request history.
type StoredEvent struct {
	ID          int64
	UserID      int64
	RawText     string
	EventType   PlanType
	Title       string
	StartTime   *time.Time
	EndTime     *time.Time
	Description string
	Payload     []byte
	CreatedAt   time.Time
}

type Goal struct {
	ID        int64
	UserID    int64
	GoalText  string
	Deadline  *string
	Steps     []string
	Status    string
	CreatedAt time.Time
}

// GraphRecord points at a chart image saved for a user.
type GraphRecord struct {
	ID        int64
	UserID    int64
	GraphType GraphType
	FilePath  string
	Title     string
	CreatedAt time.Time
}
