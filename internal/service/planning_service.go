package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/intelligence"
	"github.com/lipohub/tg-planner-bot/internal/repository"
)

type planningService struct {
	planner  intelligence.PlanService
	users    repository.UserRepo
	events   repository.EventRepo
	graphs   repository.GraphRepo
	renderer Renderer
	archive  ChartArchive
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewPlanningService(
	planner intelligence.PlanService,
	users repository.UserRepo,
	events repository.EventRepo,
	graphs repository.GraphRepo,
	renderer Renderer,
	archive ChartArchive,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) PlanningService {
	if logger == nil {
		logger = slog.Default()
	}
	return &planningService{
		planner:  planner,
		users:    users,
		events:   events,
		graphs:   graphs,
		renderer: renderer,
		archive:  archive,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

// ShouldRender is the chart policy for free-text requests: draw when there
// are events, or when the type is a schedule or a goal plan.
func ShouldRender(p domain.PlanRecord) bool {
	return len(p.Events) > 0 || p.Type.IsSchedule() || p.Type == domain.PlanGoal
}

func (s *planningService) HandleText(ctx context.Context, userID int64, text string) (out *PlanOutcome, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID}
	defer observe(ctx, s.observer, "handle-text", startedAt, fields, &err)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	analysis := s.planner.Analyze(ctx, text, userID)
	plan := analysis.Plan
	fields["plan_type"] = string(plan.Type)
	fields["source"] = string(analysis.Source)
	fields["events"] = len(plan.Events)

	out = &PlanOutcome{
		Plan:   plan,
		Source: analysis.Source,
		Tasks:  NewTaskGroup(s.logger),
	}
	out.EventID = s.record(ctx, userID, text, plan)

	if !ShouldRender(plan) {
		return out, nil
	}
	out.Chart = renderBestEffort(ctx, s.renderer, s.logger, userID, plan.Type, plan.Events, plan.Title)
	if out.Chart == nil {
		return out, nil
	}
	fields["graph_type"] = string(out.Chart.GraphType)
	persistChart(ctx, out.Tasks, s.archive, s.graphs, userID, *out.Chart)
	return out, nil
}

// record stores the request. Failures are logged and reported as id 0.
func (s *planningService) record(ctx context.Context, userID int64, text string, plan domain.PlanRecord) int64 {
	if err := s.users.Touch(ctx, domain.User{ID: userID}); err != nil {
		s.logger.ErrorContext(ctx, "record_event_failed", "user_id", userID, "error", err)
		return 0
	}
	id, err := s.events.Add(ctx, newEventRow(userID, text, plan))
	if err != nil {
		s.logger.ErrorContext(ctx, "record_event_failed", "user_id", userID, "error", err)
		return 0
	}
	return id
}

// renderBestEffort draws the chart for a finished plan. Renders never fail,
// so the only loss is the wait for a slot ending with ctx; the plan goes
// back without a chart in that case.
func renderBestEffort(ctx context.Context, r Renderer, logger *slog.Logger, userID int64, t domain.PlanType, events []domain.Event, title string) *domain.RenderResult {
	res, err := r.Render(ctx, t, events, title)
	if err != nil {
		logger.WarnContext(ctx, "render_skipped", "user_id", userID, "plan_type", string(t), "error", err)
		return nil
	}
	return &res
}

// persistChart saves the image and its history row on the task group. The
// work outlives request cancellation.
func persistChart(ctx context.Context, tasks *TaskGroup, archive ChartArchive, graphs repository.GraphRepo, userID int64, res domain.RenderResult) {
	if archive == nil || graphs == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	tasks.Go("persist-chart", func() error {
		path, err := archive.Save(userID, res)
		if err != nil {
			return err
		}
		_, err = graphs.Save(bg, domain.GraphRecord{
			UserID:    userID,
			GraphType: res.GraphType,
			FilePath:  path,
			Title:     res.Title,
		})
		return err
	})
}
