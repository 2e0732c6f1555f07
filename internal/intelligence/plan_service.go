package intelligence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/llm"
)

// Outcome is the terminal state an analysis reached.
type Outcome string

const (
	OutcomeValid     Outcome = "valid"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeFatal     Outcome = "fatal"
)

// PlanAnalysis is the result of Analyze. Plan is always complete; Err holds
// the cause when Source is the fallback.
type PlanAnalysis struct {
	Plan     domain.PlanRecord
	Source   domain.Source
	Outcome  Outcome
	Attempts int
	Err      error
}

// PlanService turns free text into a plan record.
type PlanService interface {
	// Analyze never fails; failures degrade to FallbackPlan.
	Analyze(ctx context.Context, text string, userID int64) PlanAnalysis
}

// PlanServiceOption customises a plan service.
type PlanServiceOption func(*planService)

// WithClock sets the clock used for relative dates and placeholders.
func WithClock(now func() time.Time) PlanServiceOption {
	return func(s *planService) { s.now = now }
}

// WithLocation sets the timezone naive timestamps are interpreted in.
func WithLocation(loc *time.Location) PlanServiceOption {
	return func(s *planService) { s.loc = loc }
}

type planService struct {
	client llm.LLMClient
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewPlanService creates a PlanService backed by a reasoning client.
func NewPlanService(client llm.LLMClient, logger *slog.Logger, opts ...PlanServiceOption) PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &planService{
		client: client,
		logger: logger.With("component", "plan_service"),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *planService) Analyze(ctx context.Context, text string, userID int64) PlanAnalysis {
	if s.client == nil {
		return s.fallback(text, userID, OutcomeFatal, 0, llm.ErrUnavailable)
	}

	now := s.now().In(s.loc)
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Messages: BuildPlanMessagesAt(text, userID, now),
	})
	if err != nil {
		outcome, attempts := OutcomeExhausted, 0
		var re *llm.ReasoningError
		if errors.As(err, &re) {
			attempts = re.Attempts
			if re.Kind == llm.KindFatal {
				outcome = OutcomeFatal
			}
		}
		return s.fallback(text, userID, outcome, attempts, err)
	}

	plan, err := SanitizePlan(resp.Text, now, s.loc)
	if err != nil {
		return s.fallback(text, userID, OutcomeInvalid, resp.Attempts, err)
	}

	s.logger.Info("plan_analyzed",
		"user_id", userID,
		"type", string(plan.Type),
		"events", len(plan.Events),
		"attempts", resp.Attempts,
	)
	return PlanAnalysis{
		Plan:     plan,
		Source:   domain.SourceLLM,
		Outcome:  OutcomeValid,
		Attempts: resp.Attempts,
	}
}

func (s *planService) fallback(text string, userID int64, outcome Outcome, attempts int, err error) PlanAnalysis {
	s.logger.Warn("plan_fallback",
		"user_id", userID,
		"outcome", string(outcome),
		"attempts", attempts,
		"error", err,
	)
	return PlanAnalysis{
		Plan:     FallbackPlan(text),
		Source:   domain.SourceFallback,
		Outcome:  outcome,
		Attempts: attempts,
		Err:      err,
	}
}
