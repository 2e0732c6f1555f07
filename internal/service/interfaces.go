package service

import (
	"context"
	"errors"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

var (
	// ErrNoHistory is returned by re-renders for a user without events.
	ErrNoHistory = errors.New("no recent events")
	// ErrUnknownGraph rejects graph types outside the five chart shapes.
	ErrUnknownGraph = errors.New("unknown graph type")
	// ErrEmptyText rejects blank user input before any work is done.
	ErrEmptyText = errors.New("empty text")
)

// Renderer draws charts without failing; the error only reports ctx ending
// while waiting for a render slot. *chart.Pool implements it.
type Renderer interface {
	Render(ctx context.Context, planType domain.PlanType, events []domain.Event, title string) (domain.RenderResult, error)
	RenderGraph(ctx context.Context, g domain.GraphType, events []domain.Event, title string) (domain.RenderResult, error)
}

// ChartArchive keeps rendered images and returns where they went.
// *storage.ChartStore implements it.
type ChartArchive interface {
	Save(userID int64, res domain.RenderResult) (string, error)
}

// PlanOutcome is everything a front end shows for one message.
type PlanOutcome struct {
	Plan   domain.PlanRecord
	Source domain.Source
	// EventID is zero when recording the request failed.
	EventID int64
	// Chart is nil when the plan has nothing to draw.
	Chart *domain.RenderResult
	Tasks *TaskGroup
}

// Wait joins background persistence of the chart.
func (o *PlanOutcome) Wait() error { return o.Tasks.Wait() }

type GoalOutcome struct {
	Plan    domain.PlanRecord
	Source  domain.Source
	GoalID  int64
	EventID int64
	// Chart is nil when the render slot wait was cut short.
	Chart *domain.RenderResult
	Tasks *TaskGroup
}

func (o *GoalOutcome) Wait() error { return o.Tasks.Wait() }

type ChartOutcome struct {
	Chart domain.RenderResult
	// Events is how many events the chart was built from.
	Events int
	Tasks  *TaskGroup
}

func (o *ChartOutcome) Wait() error { return o.Tasks.Wait() }

type PlanningService interface {
	HandleText(ctx context.Context, userID int64, text string) (*PlanOutcome, error)
}

type GoalService interface {
	PlanGoal(ctx context.Context, userID int64, goalText string) (*GoalOutcome, error)
}

type ChartService interface {
	Rerender(ctx context.Context, userID int64, graph domain.GraphType, limit int) (*ChartOutcome, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.StoredEvent, error)
	Graphs(ctx context.Context, userID int64, limit int) ([]domain.GraphRecord, error)
}
