package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/service"
)

// Handler holds the route handlers.
type Handler struct {
	planning service.PlanningService
	goals    service.GoalService
	charts   service.ChartService
	logger   *slog.Logger
}

func NewHandler(planning service.PlanningService, goals service.GoalService, charts service.ChartService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{planning: planning, goals: goals, charts: charts, logger: logger}
}

// CreatePlan handles POST /api/plans.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}

	out, err := h.planning.HandleText(r.Context(), req.UserID, req.Text)
	if err != nil {
		h.fail(w, r, "create plan", err)
		return
	}
	// Persistence errors are logged by the task group and not reported.
	_ = out.Wait()
	writeJSON(w, http.StatusOK, toPlanResponse(out))
}

// CreateGoal handles POST /api/goals.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}

	out, err := h.goals.PlanGoal(r.Context(), req.UserID, req.GoalText)
	if err != nil {
		h.fail(w, r, "create goal", err)
		return
	}
	_ = out.Wait()
	writeJSON(w, http.StatusCreated, toGoalResponse(out))
}

// Chart handles GET /api/users/{userID}/charts/{kind} and returns a PNG.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	kind := domain.GraphType(chi.URLParam(r, "kind"))

	out, err := h.charts.Rerender(r.Context(), userID, kind, queryLimit(r))
	if err != nil {
		h.fail(w, r, "rerender chart", err)
		return
	}
	_ = out.Wait()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Chart.Image)
}

// Events handles GET /api/users/{userID}/events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	rows, err := h.charts.History(r.Context(), userID, queryLimit(r))
	if err != nil {
		h.fail(w, r, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": toStoredEventDTOs(rows)})
}

// Graphs handles GET /api/users/{userID}/graphs.
func (h *Handler) Graphs(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	rows, err := h.charts.Graphs(r.Context(), userID, queryLimit(r))
	if err != nil {
		h.fail(w, r, "list graphs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"graphs": toGraphDTOs(rows)})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNoHistory):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, service.ErrUnknownGraph), errors.Is(err, service.ErrEmptyText):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		h.logger.ErrorContext(r.Context(), op+" failed",
			slog.String("request_id", requestIDFrom(r.Context())),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid user id"))
		return 0, false
	}
	return id, true
}

// queryLimit reads ?limit=; missing or malformed values mean the service
// default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
