package testutil

import (
	"fmt"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// RefTime is the fixed "now" shared by service and chart tests.
var RefTime = time.Date(2026, 2, 26, 15, 0, 0, 0, time.UTC)

func FixedClock() time.Time { return RefTime }

type UserOption func(*domain.User)

func WithUsername(name string) UserOption {
	return func(u *domain.User) { u.Username = name }
}

func WithFullName(name string) UserOption {
	return func(u *domain.User) { u.FullName = name }
}

func NewTestUser(id int64, opts ...UserOption) domain.User {
	u := domain.User{
		ID:         id,
		Username:   fmt.Sprintf("user%d", id),
		FullName:   fmt.Sprintf("Test User %d", id),
		LastActive: RefTime,
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

type EventOption func(*domain.Event)

func WithDuration(d time.Duration) EventOption {
	return func(e *domain.Event) { e.End = e.Start.Add(d) }
}

func WithColor(hex string) EventOption {
	return func(e *domain.Event) { e.Color = hex }
}

func Synthetic() EventOption {
	return func(e *domain.Event) { e.Synthetic = true }
}

// NewTestEvent builds a one-hour event starting at start.
func NewTestEvent(title string, start time.Time, opts ...EventOption) domain.Event {
	e := domain.Event{Title: title, Start: start, End: start.Add(time.Hour)}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

type PlanOption func(*domain.PlanRecord)

func WithEvents(events ...domain.Event) PlanOption {
	return func(p *domain.PlanRecord) { p.Events = events }
}

func WithSteps(steps ...string) PlanOption {
	return func(p *domain.PlanRecord) { p.Steps = steps }
}

func WithDeadline(d string) PlanOption {
	return func(p *domain.PlanRecord) { p.Deadline = &d }
}

func NewTestPlan(t domain.PlanType, opts ...PlanOption) domain.PlanRecord {
	p := domain.PlanRecord{
		Type:     t,
		Title:    "Тестовый план",
		Advice:   "Не забудь отдохнуть",
		Buttons:  []domain.Button{domain.RetryButton()},
		HelpText: "",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
