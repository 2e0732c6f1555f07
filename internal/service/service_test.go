package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipohub/tg-planner-bot/internal/chart"
	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/intelligence"
	"github.com/lipohub/tg-planner-bot/internal/llm"
	"github.com/lipohub/tg-planner-bot/internal/repository"
	"github.com/lipohub/tg-planner-bot/internal/storage"
	"github.com/lipohub/tg-planner-bot/internal/testutil"
)

const dayPlanJSON = `{"type":"schedule_day","title":"День","advice":"Ок",
	"events":[{"title":"Физика","start":"2026-02-27T10:00:00","end":"2026-02-27T11:00:00"},
	          {"title":"Спортзал","start":"2026-02-27T18:00:00","end":"2026-02-27T19:30:00"}]}`

const goalPlanJSON = `{"type":"goal_plan","title":"Испанский","advice":"По чуть-чуть",
	"steps":["Алфавит","100 слов"],"deadline":"2026-06-01",
	"events":[{"title":"Урок 1","start":"2026-03-01T10:00:00","end":"2026-03-01T11:00:00"}]}`

type fixture struct {
	db       *sql.DB
	llm      *testutil.FakeLLM
	dir      string
	pool     *chart.Pool
	store    *storage.ChartStore
	events   *repository.SQLiteEventRepo
	graphs   *repository.SQLiteGraphRepo
	observer *recordingObserver
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, ev UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func newFixture(t *testing.T, fake *testutil.FakeLLM) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	dir := t.TempDir()
	engine := chart.NewEngine(chart.WithSize(320, 200), chart.WithClock(testutil.FixedClock))
	return &fixture{
		db:       database,
		llm:      fake,
		dir:      dir,
		pool:     chart.NewPool(engine, 2),
		store:    storage.NewChartStore(dir),
		events:   repository.NewSQLiteEventRepo(database),
		graphs:   repository.NewSQLiteGraphRepo(database),
		observer: &recordingObserver{},
	}
}

func (f *fixture) planner() intelligence.PlanService {
	return intelligence.NewPlanService(f.llm, nil,
		intelligence.WithClock(testutil.FixedClock), intelligence.WithLocation(time.UTC))
}

func (f *fixture) planning() PlanningService {
	return NewPlanningService(f.planner(), repository.NewSQLiteUserRepo(f.db), f.events, f.graphs,
		f.pool, f.store, nil, f.observer)
}

func (f *fixture) goals() GoalService {
	return NewGoalService(f.planner(), testutil.NewTestUoW(f.db), f.graphs, f.pool, f.store, nil, f.observer)
}

func (f *fixture) charts() ChartService {
	return NewChartService(f.events, f.graphs, f.pool, f.store, nil, f.observer)
}

func pngFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	return matches
}

func TestShouldRender(t *testing.T) {
	ev := testutil.NewTestEvent("x", testutil.RefTime)
	tests := []struct {
		name string
		plan domain.PlanRecord
		want bool
	}{
		{"schedule without events", testutil.NewTestPlan(domain.PlanScheduleWeek), true},
		{"goal without events", testutil.NewTestPlan(domain.PlanGoal), true},
		{"other with events", testutil.NewTestPlan(domain.PlanOther, testutil.WithEvents(ev)), true},
		{"lesson help without events", testutil.NewTestPlan(domain.PlanLessonHelp), false},
		{"other without events", testutil.NewTestPlan(domain.PlanOther), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRender(tt.plan))
		})
	}
}

func TestPlanningService_HandleText_RendersAndPersists(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))
	ctx := context.Background()

	out, err := f.planning().HandleText(ctx, 11, "  завтра физика и спортзал ")
	require.NoError(t, err)
	require.NoError(t, out.Wait())

	assert.Equal(t, domain.SourceLLM, out.Source)
	assert.Equal(t, domain.PlanScheduleDay, out.Plan.Type)
	assert.NotZero(t, out.EventID)
	require.NotNil(t, out.Chart)
	assert.Equal(t, domain.GraphDay, out.Chart.GraphType)
	assert.Equal(t, "День", out.Chart.Title)
	assert.NotEmpty(t, out.Chart.Image)

	rows, err := f.events.ListRecent(ctx, 11, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "завтра физика и спортзал", rows[0].RawText)
	assert.Equal(t, domain.PlanScheduleDay, rows[0].EventType)
	require.NotNil(t, rows[0].StartTime)
	assert.Equal(t, 10, rows[0].StartTime.Hour())
	assert.Contains(t, string(rows[0].Payload), "Спортзал")

	graphs, err := f.graphs.ListByUser(ctx, 11, 10)
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	assert.Equal(t, domain.GraphDay, graphs[0].GraphType)
	_, statErr := os.Stat(graphs[0].FilePath)
	assert.NoError(t, statErr)

	ev := f.observer.last()
	assert.Equal(t, "handle-text", ev.Name)
	assert.True(t, ev.Success())
	assert.Equal(t, "schedule_day", ev.Fields["plan_type"])
}

func TestPlanningService_HandleText_FallbackSkipsChart(t *testing.T) {
	fake := testutil.NewFakeLLM(testutil.FakeReply{Err: &llm.ReasoningError{
		Kind: llm.KindExhausted, Cause: llm.FailureTimeout, Attempts: 3, Err: llm.ErrTimeout,
	}})
	f := newFixture(t, fake)

	out, err := f.planning().HandleText(context.Background(), 1, "что-нибудь")
	require.NoError(t, err)
	require.NoError(t, out.Wait())

	assert.Equal(t, domain.SourceFallback, out.Source)
	assert.Nil(t, out.Chart)
	assert.Equal(t, []domain.Button{domain.RetryButton()}, out.Plan.Buttons)
	assert.NotZero(t, out.EventID, "fallback requests are still recorded")
	assert.Empty(t, pngFiles(t, f.dir))
}

func TestPlanningService_HandleText_EmptyText(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))

	_, err := f.planning().HandleText(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Empty(t, f.llm.Requests())
	assert.False(t, f.observer.last().Success())
}

type failingUsers struct{}

func (failingUsers) Touch(context.Context, domain.User) error { return errors.New("disk full") }
func (failingUsers) Get(context.Context, int64) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func TestPlanningService_HandleText_RecordFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))
	svc := NewPlanningService(f.planner(), failingUsers{}, f.events, f.graphs, f.pool, f.store, nil)

	out, err := svc.HandleText(context.Background(), 5, "завтра физика")
	require.NoError(t, err)
	assert.Zero(t, out.EventID)
	require.NotNil(t, out.Chart)
	assert.Error(t, out.Wait(), "graph history needs the user row")
}

func TestPlanningService_HandleText_CanceledWhileWaitingForRender(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewPlanningService(f.planner(), repository.NewSQLiteUserRepo(f.db), f.events, f.graphs,
		stallRenderer{cancel: cancel}, f.store, nil)

	out, err := svc.HandleText(ctx, 1, "завтра физика")
	require.NoError(t, err)
	require.NoError(t, out.Wait())

	assert.Equal(t, domain.PlanScheduleDay, out.Plan.Type)
	assert.NotZero(t, out.EventID, "the request was recorded before the render wait")
	assert.Nil(t, out.Chart)
	assert.Empty(t, pngFiles(t, f.dir))
}

func TestGoalService_PlanGoal_CanceledWhileWaitingForRender(t *testing.T) {
	f := newFixture(t, testutil.Reply(goalPlanJSON))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewGoalService(f.planner(), testutil.NewTestUoW(f.db), f.graphs, stallRenderer{cancel: cancel}, f.store, nil)

	out, err := svc.PlanGoal(ctx, 23, "Бегать")
	require.NoError(t, err)
	require.NoError(t, out.Wait())

	assert.Equal(t, domain.PlanGoal, out.Plan.Type)
	assert.NotZero(t, out.GoalID)
	assert.Nil(t, out.Chart)
}

// stallRenderer behaves like a pool with no free slot until the request
// context ends. A non-nil cancel ends it from inside the wait.
type stallRenderer struct {
	cancel context.CancelFunc
}

func (r stallRenderer) wait(ctx context.Context) (domain.RenderResult, error) {
	if r.cancel != nil {
		r.cancel()
	}
	<-ctx.Done()
	return domain.RenderResult{}, ctx.Err()
}

func (r stallRenderer) Render(ctx context.Context, _ domain.PlanType, _ []domain.Event, _ string) (domain.RenderResult, error) {
	return r.wait(ctx)
}

func (r stallRenderer) RenderGraph(ctx context.Context, _ domain.GraphType, _ []domain.Event, _ string) (domain.RenderResult, error) {
	return r.wait(ctx)
}

func TestGoalChartTitle(t *testing.T) {
	assert.Equal(t, "План: бегать", GoalChartTitle("бегать"))
	long := "выучить испанский язык до уровня B2 за полгода"
	assert.Equal(t, "План: "+string([]rune(long)[:30]), GoalChartTitle(long))
}

func TestGoalService_PlanGoal(t *testing.T) {
	f := newFixture(t, testutil.Reply(goalPlanJSON))
	ctx := context.Background()

	out, err := f.goals().PlanGoal(ctx, 21, "Выучить испанский")
	require.NoError(t, err)
	require.NoError(t, out.Wait())

	assert.Contains(t, f.llm.LastUserMessage(), "Создай план цели: Выучить испанский")
	assert.NotZero(t, out.GoalID)
	assert.NotZero(t, out.EventID)
	require.NotNil(t, out.Chart)
	assert.Equal(t, domain.GraphYear, out.Chart.GraphType)
	assert.Equal(t, "План: Выучить испанский", out.Chart.Title)

	goals, err := repository.NewSQLiteGoalRepo(f.db).ListByUser(ctx, 21)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Выучить испанский", goals[0].GoalText)
	assert.Equal(t, []string{"Алфавит", "100 слов"}, goals[0].Steps)
	require.NotNil(t, goals[0].Deadline)
	assert.Equal(t, "2026-06-01", *goals[0].Deadline)

	rows, err := f.events.ListRecent(ctx, 21, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.PlanGoal, rows[0].EventType)

	assert.Len(t, pngFiles(t, f.dir), 1)
}

func TestGoalService_PlanGoal_RollsBackTogether(t *testing.T) {
	f := newFixture(t, testutil.Reply(goalPlanJSON))
	boom := errors.New("event insert failed")
	// The goal row is already written when the event insert fails.
	uow := &testutil.FailOnNthExecUoW{DB: f.db, FailOn: 1, Match: "INSERT INTO events", Err: boom}
	svc := NewGoalService(f.planner(), uow, f.graphs, f.pool, f.store, nil)
	ctx := context.Background()

	out, err := svc.PlanGoal(ctx, 22, "Бегать")
	require.NoError(t, err, "a failed save does not cost the user the plan")
	require.NotNil(t, out)
	assert.Equal(t, domain.PlanGoal, out.Plan.Type)
	assert.Equal(t, []string{"Алфавит", "100 слов"}, out.Plan.Steps)
	assert.Zero(t, out.GoalID)
	assert.Zero(t, out.EventID)
	require.NotNil(t, out.Chart)
	assert.Equal(t, domain.GraphYear, out.Chart.GraphType)
	assert.Error(t, out.Wait(), "graph history needs the rolled-back user row")

	goals, err := repository.NewSQLiteGoalRepo(f.db).ListByUser(ctx, 22)
	require.NoError(t, err)
	assert.Empty(t, goals)
	rows, err := f.events.ListRecent(ctx, 22, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestChartService_RerenderFromHistory(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))
	ctx := context.Background()

	first, err := f.planning().HandleText(ctx, 31, "завтра физика")
	require.NoError(t, err)
	require.NoError(t, first.Wait())

	out, err := f.charts().Rerender(ctx, 31, domain.GraphWeek, 0)
	require.NoError(t, err)
	require.NoError(t, out.Wait())

	assert.Equal(t, 2, out.Events, "payload events are expanded")
	assert.Equal(t, domain.GraphWeek, out.Chart.GraphType)
	assert.Equal(t, "Твой Week (перегенерация)", out.Chart.Title)

	graphs, err := f.charts().Graphs(ctx, 31, 0)
	require.NoError(t, err)
	require.Len(t, graphs, 2)
	assert.Equal(t, domain.GraphWeek, graphs[0].GraphType)
}

func TestChartService_RerenderWithoutHistory(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))

	_, err := f.charts().Rerender(context.Background(), 404, domain.GraphDay, 20)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestChartService_RerenderUnknownGraph(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))

	_, err := f.charts().Rerender(context.Background(), 1, domain.GraphType("decade"), 20)
	assert.ErrorIs(t, err, ErrUnknownGraph)
}

func TestChartService_History(t *testing.T) {
	f := newFixture(t, testutil.Reply(dayPlanJSON))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := f.planning().HandleText(ctx, 41, "завтра физика")
		require.NoError(t, err)
		require.NoError(t, out.Wait())
	}

	got, err := f.charts().History(ctx, 41, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestEventsFromHistory(t *testing.T) {
	start := testutil.RefTime
	end := start.Add(2 * time.Hour)
	plan := testutil.NewTestPlan(domain.PlanScheduleDay, testutil.WithEvents(
		testutil.NewTestEvent("A", start),
		testutil.NewTestEvent("B", start.Add(time.Hour), testutil.WithColor("#123456")),
	))

	rows := []domain.StoredEvent{
		{Title: "новое", StartTime: &start},
		{Title: "с полезной нагрузкой", Payload: encodePayload(plan)},
		{RawText: "без времени"},
		{Title: "интервал", StartTime: &start, EndTime: &end},
	}

	got := eventsFromHistory(rows)
	require.Len(t, got, 5)

	assert.Equal(t, "интервал", got[0].Title)
	assert.Equal(t, end, got[0].End)
	assert.Equal(t, "без времени", got[1].Title)
	assert.True(t, got[1].Synthetic)
	assert.Equal(t, "A", got[2].Title)
	assert.Equal(t, "#123456", got[3].Color)
	assert.Equal(t, "новое", got[4].Title)
	assert.Equal(t, start.Add(time.Hour), got[4].End)
}

func TestTaskGroup_LogsAndReturnsFirstError(t *testing.T) {
	tg := NewTaskGroup(nil)
	boom := errors.New("boom")
	tg.Go("ok", func() error { return nil })
	tg.Go("fail", func() error { return boom })

	assert.ErrorIs(t, tg.Wait(), boom)
}

func TestTaskGroup_RecoversPanics(t *testing.T) {
	tg := NewTaskGroup(nil)
	tg.Go("panics", func() error { panic("nope") })

	err := tg.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panics")
}

func TestTaskGroup_NilWait(t *testing.T) {
	var tg *TaskGroup
	assert.NoError(t, tg.Wait())
}

func TestPrometheusUseCaseObserver_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := &recordingObserver{}
	obs := useCaseObserverOrNoop([]UseCaseObserver{nil, NewPrometheusUseCaseObserver(reg), rec})
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "plan.handle_text", Duration: time.Second})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "plan.handle_text", Err: errors.New("x")})

	n, err := promtest.GatherAndCount(reg, "planbot_service_use_cases_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")
	assert.Error(t, rec.last().Err)
}

func TestUseCaseObserverOrNoop_Empty(t *testing.T) {
	assert.Equal(t, NoopUseCaseObserver{}, useCaseObserverOrNoop([]UseCaseObserver{nil}))
}
