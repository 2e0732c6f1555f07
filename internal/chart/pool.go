package chart

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// Pool runs renders on their own goroutines with bounded parallelism so a
// slow chart does not hold up request handling.
type Pool struct {
	engine *Engine
	sem    *semaphore.Weighted
}

// NewPool creates a Pool with the given number of workers; zero or less
// uses GOMAXPROCS.
func NewPool(engine *Engine, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{engine: engine, sem: semaphore.NewWeighted(int64(workers))}
}

// Engine returns the engine renders run on.
func (p *Pool) Engine() *Engine { return p.engine }

// Render waits for a free slot and draws the chart for planType. The only
// error is ctx ending before a slot frees up; once started, a render runs
// to completion.
func (p *Pool) Render(ctx context.Context, planType domain.PlanType, events []domain.Event, title string) (domain.RenderResult, error) {
	return p.run(ctx, p.engine.Dispatch(planType), events, title)
}

// RenderGraph is Render for an explicit chart shape.
func (p *Pool) RenderGraph(ctx context.Context, g domain.GraphType, events []domain.Event, title string) (domain.RenderResult, error) {
	return p.run(ctx, p.engine.ForGraph(g), events, title)
}

func (p *Pool) run(ctx context.Context, fn RenderFunc, events []domain.Event, title string) (domain.RenderResult, error) {
	p.engine.metrics.waiting(1)
	err := p.sem.Acquire(ctx, 1)
	p.engine.metrics.waiting(-1)
	if err != nil {
		return domain.RenderResult{}, err
	}

	events = append([]domain.Event(nil), events...)
	done := make(chan domain.RenderResult, 1)
	go func() {
		defer p.sem.Release(1)
		done <- fn(events, title)
	}()
	return <-done, nil
}
