package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/repository"
)

// DefaultHistoryLimit is how many recent events a re-render draws from.
const DefaultHistoryLimit = 20

type chartService struct {
	events   repository.EventRepo
	graphs   repository.GraphRepo
	renderer Renderer
	archive  ChartArchive
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewChartService(
	events repository.EventRepo,
	graphs repository.GraphRepo,
	renderer Renderer,
	archive ChartArchive,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chartService{
		events:   events,
		graphs:   graphs,
		renderer: renderer,
		archive:  archive,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

// RerenderTitle is the caption of a chart rebuilt from history, e.g.
// "Твой Week (перегенерация)".
func RerenderTitle(g domain.GraphType) string {
	kind := string(g)
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return fmt.Sprintf("Твой %s (перегенерация)", kind)
}

func (s *chartService) Rerender(ctx context.Context, userID int64, graph domain.GraphType, limit int) (out *ChartOutcome, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "graph_type": string(graph)}
	defer observe(ctx, s.observer, "rerender-chart", startedAt, fields, &err)

	if !domain.ValidGraphTypes[string(graph)] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGraph, graph)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.events.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHistory
	}

	events := eventsFromHistory(rows)
	fields["events"] = len(events)
	res, err := s.renderer.RenderGraph(ctx, graph, events, RerenderTitle(graph))
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	out = &ChartOutcome{Chart: res, Events: len(events), Tasks: NewTaskGroup(s.logger)}
	persistChart(ctx, out.Tasks, s.archive, s.graphs, userID, res)
	return out, nil
}

func (s *chartService) History(ctx context.Context, userID int64, limit int) ([]domain.StoredEvent, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.events.ListRecent(ctx, userID, limit)
}

func (s *chartService) Graphs(ctx context.Context, userID int64, limit int) ([]domain.GraphRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.graphs.ListByUser(ctx, userID, limit)
}
