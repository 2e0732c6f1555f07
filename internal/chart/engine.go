package chart

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// RenderFunc draws events into an image. It never fails: faults degrade
// to a placeholder image.
type RenderFunc func(events []domain.Event, title string) domain.RenderResult

// Engine renders plans into PNG charts.
type Engine struct {
	theme   Theme
	width   int
	height  int
	now     func() time.Time
	loc     *time.Location
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

func WithTheme(t Theme) Option { return func(e *Engine) { e.theme = t } }

func WithSize(width, height int) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithClock sets the reference time for "today" and "now" axes.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLocation reads the clock in loc, so "today" starts at the same
// midnight the planner used for naive timestamps.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithMetrics(m *Metrics) Option { return func(e *Engine) { e.metrics = m } }

// NewEngine creates an Engine with the dark theme at 1600x1000.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		theme:  DarkTheme(),
		width:  1600,
		height: 1000,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "chart")
	return e
}

// Now is the reference time charts are drawn against.
func (e *Engine) Now() time.Time {
	t := e.now()
	if e.loc != nil {
		t = t.In(e.loc)
	}
	return t
}

// GraphFor maps a plan type onto the chart shape that visualizes it.
func GraphFor(t domain.PlanType) domain.GraphType {
	switch t {
	case domain.PlanScheduleDay:
		return domain.GraphDay
	case domain.PlanScheduleWeek:
		return domain.GraphWeek
	case domain.PlanScheduleMonth:
		return domain.GraphMonth
	case domain.PlanScheduleSemester:
		return domain.GraphSemester
	case domain.PlanScheduleYear, domain.PlanGoal:
		return domain.GraphYear
	case domain.PlanLessonHelp, domain.PlanMeetingHelp, domain.PlanOther:
		return domain.GraphDay
	default:
		return domain.GraphDay
	}
}

// Dispatch returns the renderer for a plan type. Informational types use
// the day chart.
func (e *Engine) Dispatch(t domain.PlanType) RenderFunc {
	return e.ForGraph(GraphFor(t))
}

// ForGraph returns the renderer for a chart shape.
func (e *Engine) ForGraph(g domain.GraphType) RenderFunc {
	switch g {
	case domain.GraphWeek:
		return e.Week
	case domain.GraphMonth:
		return e.Month
	case domain.GraphSemester:
		return e.Semester
	case domain.GraphYear:
		return e.Year
	default:
		return e.Day
	}
}

// RenderPlan renders a plan with the chart its type dispatches to.
func (e *Engine) RenderPlan(plan domain.PlanRecord) domain.RenderResult {
	return e.Dispatch(plan.Type)(plan.Events, plan.Title)
}

var defaultTitles = map[domain.GraphType]string{
	domain.GraphDay:      "Расписание дня",
	domain.GraphWeek:     "Расписание недели",
	domain.GraphMonth:    "Расписание месяца",
	domain.GraphSemester: "Семестр",
	domain.GraphYear:     "Прогресс года",
}

type drawFunc func(c *canvas, events []domain.Event, now time.Time)

func (e *Engine) render(g domain.GraphType, title string, events []domain.Event, draw drawFunc) (res domain.RenderResult) {
	start := time.Now()
	status := "ok"
	res = domain.RenderResult{GraphType: g, Title: title}

	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			e.logger.Error("render_panic", "graph", string(g), "panic", fmt.Sprint(r))
			res.Image = e.placeholder(title, "Не удалось построить график.\nПопробуй ещё раз позже.")
		}
		e.metrics.observe(g, status, time.Since(start))
	}()

	events = truncateEvents(events, domain.MaxRenderedEvents)
	if len(events) == 0 {
		status = "empty"
		res.Image = e.placeholder(title, emptyMessages[g])
		return res
	}

	c := newCanvas(e.width, e.height, e.theme)
	c.title(domain.CoalesceStr(title, defaultTitles[g]))
	draw(c, events, e.Now())
	c.watermark()
	img, err := c.encode()
	if err != nil {
		status = "error"
		e.logger.Error("render_encode_failed", "graph", string(g), "error", err)
		res.Image = e.placeholder(title, "Не удалось сохранить график.")
		return res
	}
	res.Image = img
	return res
}

func (e *Engine) Day(events []domain.Event, title string) domain.RenderResult {
	return e.render(domain.GraphDay, title, events, e.drawDay)
}

func (e *Engine) Week(events []domain.Event, title string) domain.RenderResult {
	return e.render(domain.GraphWeek, title, events, e.drawWeek)
}

func (e *Engine) Month(events []domain.Event, title string) domain.RenderResult {
	return e.render(domain.GraphMonth, title, events, e.drawMonth)
}

func (e *Engine) Semester(events []domain.Event, title string) domain.RenderResult {
	return e.render(domain.GraphSemester, title, events, e.drawSemester)
}

func (e *Engine) Year(events []domain.Event, title string) domain.RenderResult {
	return e.render(domain.GraphYear, title, events, e.drawYear)
}
