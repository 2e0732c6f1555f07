package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipohub/tg-planner-bot/internal/chart"
	"github.com/lipohub/tg-planner-bot/internal/intelligence"
	"github.com/lipohub/tg-planner-bot/internal/repository"
	"github.com/lipohub/tg-planner-bot/internal/service"
	"github.com/lipohub/tg-planner-bot/internal/storage"
	"github.com/lipohub/tg-planner-bot/internal/testutil"
)

const weekPlanJSON = `{"type":"schedule_week","title":"Неделя","advice":"Держи темп",
	"events":[{"title":"Физика","start":"2026-02-27T10:00:00","end":"2026-02-27T11:00:00"}]}`

func testRouter(t *testing.T, reply string, ready ...ReadyCheck) http.Handler {
	t.Helper()
	database := testutil.NewTestDB(t)
	planner := intelligence.NewPlanService(testutil.Reply(reply), nil,
		intelligence.WithClock(testutil.FixedClock), intelligence.WithLocation(time.UTC))

	reg := prometheus.NewRegistry()
	engine := chart.NewEngine(chart.WithSize(320, 200), chart.WithClock(testutil.FixedClock),
		chart.WithMetrics(chart.NewMetrics(reg)))
	pool := chart.NewPool(engine, 2)
	store := storage.NewChartStore(t.TempDir())

	users := repository.NewSQLiteUserRepo(database)
	events := repository.NewSQLiteEventRepo(database)
	graphs := repository.NewSQLiteGraphRepo(database)

	h := NewHandler(
		service.NewPlanningService(planner, users, events, graphs, pool, store, nil),
		service.NewGoalService(planner, testutil.NewTestUoW(database), graphs, pool, store, nil),
		service.NewChartService(events, graphs, pool, store, nil),
		nil,
	)
	return NewRouter(h, RouterOptions{Gatherer: reg, Ready: ready})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreatePlan(t *testing.T) {
	h := testRouter(t, weekPlanJSON)

	w := do(t, h, http.MethodPost, "/api/plans", PlanRequest{UserID: 3, Text: "неделя"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "schedule_week", resp.Plan.Type)
	assert.Equal(t, "llm", resp.Source)
	assert.NotZero(t, resp.EventID)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, "week", resp.Chart.GraphType)
	_, err := png.Decode(bytes.NewReader(resp.Chart.PNG))
	assert.NoError(t, err)
}

func TestCreatePlan_Validation(t *testing.T) {
	h := testRouter(t, weekPlanJSON)

	w := do(t, h, http.MethodPost, "/api/plans", PlanRequest{UserID: 0, Text: "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/api/plans", PlanRequest{UserID: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/plans", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlan_WhitespaceTextRejected(t *testing.T) {
	h := testRouter(t, weekPlanJSON)

	w := do(t, h, http.MethodPost, "/api/plans", PlanRequest{UserID: 1, Text: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGoal(t *testing.T) {
	h := testRouter(t, `{"type":"goal_plan","title":"Цель","advice":"Вперёд","steps":["Шаг 1"]}`)

	w := do(t, h, http.MethodPost, "/api/goals", GoalRequest{UserID: 4, GoalText: "Пробежать марафон"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp GoalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.GoalID)
	assert.Equal(t, []string{"Шаг 1"}, resp.Plan.Steps)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, "year", resp.Chart.GraphType)
	assert.Equal(t, "План: Пробежать марафон", resp.Chart.Title)
}

func TestChart_RerenderAndHistory(t *testing.T) {
	h := testRouter(t, weekPlanJSON)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/plans", PlanRequest{UserID: 9, Text: "неделя"}).Code)

	w := do(t, h, http.MethodGet, "/api/users/9/charts/month", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	assert.NoError(t, err)

	w = do(t, h, http.MethodGet, "/api/users/9/events?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events struct {
		Events []StoredEventDTO `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events.Events, 1)
	assert.Equal(t, "неделя", events.Events[0].RawText)

	w = do(t, h, http.MethodGet, "/api/users/9/graphs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var graphs struct {
		Graphs []GraphDTO `json:"graphs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &graphs))
	require.Len(t, graphs.Graphs, 2)
	assert.Equal(t, "month", graphs.Graphs[0].GraphType)
	assert.Equal(t, "Твой Month (перегенерация)", graphs.Graphs[0].Title)
}

func TestChart_Errors(t *testing.T) {
	h := testRouter(t, weekPlanJSON)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/users/77/charts/day", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/users/77/charts/decade", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/users/abc/charts/day", nil).Code)
}

func TestHealth(t *testing.T) {
	h := testRouter(t, weekPlanJSON)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/ready", nil).Code)

	down := testRouter(t, weekPlanJSON, func(context.Context) error { return errors.New("db down") })
	w := do(t, down, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "db down")
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t, weekPlanJSON)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/plans", PlanRequest{UserID: 1, Text: "неделя"}).Code)

	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "renders_total")
}

func TestRequestID_Echoed(t *testing.T) {
	h := testRouter(t, weekPlanJSON)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
