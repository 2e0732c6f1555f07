package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/db"
	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/intelligence"
	"github.com/lipohub/tg-planner-bot/internal/repository"
)

const (
	goalPromptPrefix = "Создай план цели: "
	goalTitleRunes   = 30
)

type goalService struct {
	planner  intelligence.PlanService
	uow      db.UnitOfWork
	graphs   repository.GraphRepo
	renderer Renderer
	archive  ChartArchive
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewGoalService(
	planner intelligence.PlanService,
	uow db.UnitOfWork,
	graphs repository.GraphRepo,
	renderer Renderer,
	archive ChartArchive,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) GoalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &goalService{
		planner:  planner,
		uow:      uow,
		graphs:   graphs,
		renderer: renderer,
		archive:  archive,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

// GoalChartTitle is "План: " followed by the first 30 runes of the goal.
func GoalChartTitle(goalText string) string {
	r := []rune(goalText)
	if len(r) > goalTitleRunes {
		r = r[:goalTitleRunes]
	}
	return "План: " + string(r)
}

// PlanGoal asks for a goal plan, stores the goal and its event in one
// transaction, then renders the goal progress chart.
func (s *goalService) PlanGoal(ctx context.Context, userID int64, goalText string) (out *GoalOutcome, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID}
	defer observe(ctx, s.observer, "plan-goal", startedAt, fields, &err)

	goalText = strings.TrimSpace(goalText)
	if goalText == "" {
		return nil, ErrEmptyText
	}

	analysis := s.planner.Analyze(ctx, goalPromptPrefix+goalText, userID)
	plan := analysis.Plan
	fields["source"] = string(analysis.Source)
	fields["steps"] = len(plan.Steps)

	out = &GoalOutcome{Plan: plan, Source: analysis.Source, Tasks: NewTaskGroup(s.logger)}
	saveErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteUserRepo(tx).Touch(ctx, domain.User{ID: userID}); err != nil {
			return err
		}
		goalID, err := repository.NewSQLiteGoalRepo(tx).Save(ctx, domain.Goal{
			UserID:   userID,
			GoalText: goalText,
			Deadline: plan.Deadline,
			Steps:    plan.Steps,
		})
		if err != nil {
			return err
		}
		eventRow := newEventRow(userID, goalText, plan)
		eventRow.EventType = domain.PlanGoal
		eventID, err := repository.NewSQLiteEventRepo(tx).Add(ctx, eventRow)
		if err != nil {
			return err
		}
		out.GoalID, out.EventID = goalID, eventID
		return nil
	})
	if saveErr != nil {
		// The plan is still good; the caller gets it without ids.
		s.logger.ErrorContext(ctx, "save_goal_failed", "user_id", userID, "error", saveErr)
		out.GoalID, out.EventID = 0, 0
		fields["saved"] = false
	}
	fields["goal_id"] = out.GoalID

	out.Chart = renderBestEffort(ctx, s.renderer, s.logger, userID, domain.PlanGoal, plan.Events, GoalChartTitle(goalText))
	if out.Chart != nil {
		persistChart(ctx, out.Tasks, s.archive, s.graphs, userID, *out.Chart)
	}
	return out, nil
}
