package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/service"
)

const maxTextRunes = 4000

// PlanRequest is the body of POST /api/plans.
type PlanRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

func (r PlanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Text, validation.Required, validation.RuneLength(1, maxTextRunes)),
	)
}

// GoalRequest is the body of POST /api/goals.
type GoalRequest struct {
	UserID   int64  `json:"user_id"`
	GoalText string `json:"goal_text"`
}

func (r GoalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.GoalText, validation.Required, validation.RuneLength(1, maxTextRunes)),
	)
}

type EventDTO struct {
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Color     string    `json:"color,omitempty"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

// ChartDTO carries the PNG as base64 through encoding/json.
type ChartDTO struct {
	GraphType string `json:"graph_type"`
	Title     string `json:"title"`
	PNG       []byte `json:"png"`
}

type PlanDTO struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Advice    string          `json:"advice"`
	Events    []EventDTO      `json:"events"`
	Materials []string        `json:"materials,omitempty"`
	Reminders []string        `json:"reminders,omitempty"`
	Geo       *string         `json:"geo,omitempty"`
	Buttons   []domain.Button `json:"buttons"`
	Steps     []string        `json:"steps,omitempty"`
	HelpText  string          `json:"help_text,omitempty"`
	Deadline  *string         `json:"deadline,omitempty"`
}

type PlanResponse struct {
	Plan    PlanDTO   `json:"plan"`
	Source  string    `json:"source"`
	EventID int64     `json:"event_id,omitempty"`
	Chart   *ChartDTO `json:"chart,omitempty"`
}

type GoalResponse struct {
	Plan    PlanDTO   `json:"plan"`
	Source  string    `json:"source"`
	GoalID  int64     `json:"goal_id,omitempty"`
	EventID int64     `json:"event_id,omitempty"`
	Chart   *ChartDTO `json:"chart,omitempty"`
}

type StoredEventDTO struct {
	ID        int64      `json:"id"`
	RawText   string     `json:"raw_text"`
	EventType string     `json:"event_type"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type GraphDTO struct {
	ID        int64     `json:"id"`
	GraphType string    `json:"graph_type"`
	FilePath  string    `json:"file_path"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func toPlanDTO(p domain.PlanRecord) PlanDTO {
	out := PlanDTO{
		Type:      string(p.Type),
		Title:     p.Title,
		Advice:    p.Advice,
		Events:    make([]EventDTO, 0, len(p.Events)),
		Materials: p.Materials,
		Reminders: p.Reminders,
		Geo:       p.Geo,
		Buttons:   p.Buttons,
		Steps:     p.Steps,
		HelpText:  p.HelpText,
		Deadline:  p.Deadline,
	}
	for _, ev := range p.Events {
		out.Events = append(out.Events, EventDTO(ev))
	}
	return out
}

func toChartDTO(res domain.RenderResult) ChartDTO {
	return ChartDTO{GraphType: string(res.GraphType), Title: res.Title, PNG: res.Image}
}

func toPlanResponse(o *service.PlanOutcome) PlanResponse {
	resp := PlanResponse{Plan: toPlanDTO(o.Plan), Source: string(o.Source), EventID: o.EventID}
	if o.Chart != nil {
		c := toChartDTO(*o.Chart)
		resp.Chart = &c
	}
	return resp
}

func toGoalResponse(o *service.GoalOutcome) GoalResponse {
	resp := GoalResponse{
		Plan:    toPlanDTO(o.Plan),
		Source:  string(o.Source),
		GoalID:  o.GoalID,
		EventID: o.EventID,
	}
	if o.Chart != nil {
		c := toChartDTO(*o.Chart)
		resp.Chart = &c
	}
	return resp
}

func toStoredEventDTOs(rows []domain.StoredEvent) []StoredEventDTO {
	out := make([]StoredEventDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, StoredEventDTO{
			ID:        r.ID,
			RawText:   r.RawText,
			EventType: string(r.EventType),
			Title:     r.Title,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

func toGraphDTOs(rows []domain.GraphRecord) []GraphDTO {
	out := make([]GraphDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, GraphDTO{
			ID:        r.ID,
			GraphType: string(r.GraphType),
			FilePath:  r.FilePath,
			Title:     r.Title,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}
