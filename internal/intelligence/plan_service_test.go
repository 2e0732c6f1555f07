package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/llm"
)

// mockLLMClient returns a fixed response for testing.
type mockLLMClient struct {
	response string
	err      error
	lastReq  llm.GenerateRequest
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "grok-4", Attempts: 1}, nil
}

func (m *mockLLMClient) Available(_ context.Context) bool { return m.err == nil }

func fixedClock() time.Time {
	return time.Date(2026, 2, 26, 15, 0, 0, 0, time.UTC)
}

func newTestPlanService(client llm.LLMClient) PlanService {
	return NewPlanService(client, nil, WithClock(fixedClock), WithLocation(time.UTC))
}

func TestPlanService_Analyze_Valid(t *testing.T) {
	client := &mockLLMClient{response: `{"type":"schedule_day","title":"День","advice":"Ок",
		"events":[{"title":"Физика","start":"2026-02-27T10:00:00","end":"2026-02-27T11:00:00"}]}`}

	got := newTestPlanService(client).Analyze(context.Background(), "завтра физика", 9)

	assert.Equal(t, domain.SourceLLM, got.Source)
	assert.Equal(t, OutcomeValid, got.Outcome)
	assert.NoError(t, got.Err)
	assert.Equal(t, domain.PlanScheduleDay, got.Plan.Type)
	require.Len(t, got.Plan.Events, 1)

	require.Len(t, client.lastReq.Messages, 2)
	assert.Contains(t, client.lastReq.Messages[0].Content, "Сегодня: 2026-02-26")
	assert.Equal(t, "Пользователь 9 (ID: 9):\nзавтра физика", client.lastReq.Messages[1].Content)
}

func TestPlanService_Analyze_ExhaustedFallsBack(t *testing.T) {
	client := &mockLLMClient{err: &llm.ReasoningError{
		Kind: llm.KindExhausted, Cause: llm.FailureTimeout, Attempts: 3, Err: llm.ErrTimeout,
	}}

	got := newTestPlanService(client).Analyze(context.Background(), "x", 1)

	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Equal(t, OutcomeExhausted, got.Outcome)
	assert.Equal(t, 3, got.Attempts)
	assert.ErrorIs(t, got.Err, llm.ErrRetryExhausted)
	assert.Equal(t, FallbackPlan("x"), got.Plan)
}

func TestPlanService_Analyze_FatalFallsBack(t *testing.T) {
	client := &mockLLMClient{err: &llm.ReasoningError{
		Kind: llm.KindFatal, Cause: llm.FailureRequest, Attempts: 1, Err: errors.New("401"),
	}}

	got := newTestPlanService(client).Analyze(context.Background(), "x", 1)

	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Equal(t, OutcomeFatal, got.Outcome)
	assert.ErrorIs(t, got.Err, llm.ErrFatalRequest)
}

func TestPlanService_Analyze_MalformedFallsBack(t *testing.T) {
	got := newTestPlanService(&mockLLMClient{response: "Извини, не могу"}).Analyze(context.Background(), "x", 1)

	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Equal(t, OutcomeInvalid, got.Outcome)
	assert.ErrorIs(t, got.Err, ErrMalformedResponse)
	assert.Equal(t, "Не удалось обработать запрос", got.Plan.Title)
}

func TestPlanService_Analyze_NilClient(t *testing.T) {
	got := newTestPlanService(nil).Analyze(context.Background(), "x", 1)
	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.ErrorIs(t, got.Err, llm.ErrUnavailable)
}

func TestPlanService_Analyze_RecordAlwaysComplete(t *testing.T) {
	replies := []string{`{}`, `{"type":"bogus"}`, "", `{"buttons":[]}`}
	for _, reply := range replies {
		got := newTestPlanService(&mockLLMClient{response: reply}).Analyze(context.Background(), "x", 1)
		assert.NotEmpty(t, got.Plan.Type, "reply %q", reply)
		assert.NotEmpty(t, got.Plan.Title, "reply %q", reply)
		assert.NotEmpty(t, got.Plan.Advice, "reply %q", reply)
		assert.NotEmpty(t, got.Plan.Buttons, "reply %q", reply)
		assert.True(t, got.Plan.Type.Valid(), "reply %q", reply)
	}
}

// Full path: httptest server -> OpenAI-compatible client -> PlanService.
func TestPlanService_Analyze_WithHTTPTestServer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		reply := "```json\n{\"type\":\"meeting_help\",\"title\":\"Встреча\",\"advice\":\"Не опаздывай\"," +
			"\"events\":[{\"title\":\"Встреча\",\"start\":\"2026-02-27T14:00:00\",\"end\":\"2026-02-27T15:30:00\"}]}\n```"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "1", "object": "chat.completion", "model": "grok-4",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
	defer srv.Close()

	cfg := llm.DefaultConfig()
	cfg.BaseURL = srv.URL + "/v1"
	cfg.APIKey = "k"
	client := llm.NewOpenAIClient(cfg, nil, llm.WithSleep(func(context.Context, time.Duration) error { return nil }))

	got := newTestPlanService(client).Analyze(context.Background(), "встреча в 14", 3)

	assert.Equal(t, domain.SourceLLM, got.Source)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, domain.PlanMeetingHelp, got.Plan.Type)
	require.Len(t, got.Plan.Events, 1)
	assert.Equal(t, 90*time.Minute, got.Plan.Events[0].Duration())
}

func TestPlanService_Analyze_HTTPAuthFailureFallsBack(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer srv.Close()

	cfg := llm.DefaultConfig()
	cfg.BaseURL = srv.URL + "/v1"
	client := llm.NewOpenAIClient(cfg, nil)

	got := newTestPlanService(client).Analyze(context.Background(), "x", 1)

	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Equal(t, OutcomeFatal, got.Outcome)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPlanService_Analyze_ThreeTimeoutsGiveExactFallback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := llm.DefaultConfig()
	cfg.BaseURL = srv.URL + "/v1"
	cfg.APIKey = "k"
	cfg.TimeoutMs = 50
	var delays []time.Duration
	client := llm.NewOpenAIClient(cfg, nil, llm.WithSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))

	const text = "завтра в 10 физика контрольная"
	got := newTestPlanService(client).Analyze(context.Background(), text, 7)

	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, delays, 2)
	assert.InDelta(t, float64(2*time.Second), float64(delays[0]), float64(time.Microsecond))
	assert.InDelta(t, float64(4*time.Second), float64(delays[1]), float64(time.Microsecond))
	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Equal(t, OutcomeExhausted, got.Outcome)
	assert.ErrorIs(t, got.Err, llm.ErrRetryExhausted)
	assert.Equal(t, FallbackPlan(text), got.Plan)
	assert.Equal(t, domain.PlanOther, got.Plan.Type)
	assert.Empty(t, got.Plan.Events)
	assert.Equal(t, []domain.Button{domain.RetryButton()}, got.Plan.Buttons)
}
