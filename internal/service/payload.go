package service

import (
	"encoding/json"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/repository"
)

// planPayload is the structured copy of a plan kept in events.payload so
// history re-renders can draw every event, not only the first.
type planPayload struct {
	Type     domain.PlanType `json:"type"`
	Title    string          `json:"title"`
	Advice   string          `json:"advice"`
	Events   []payloadEvent  `json:"events"`
	Steps    []string        `json:"steps,omitempty"`
	Deadline *string         `json:"deadline,omitempty"`
}

type payloadEvent struct {
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Color     string    `json:"color,omitempty"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

func encodePayload(p domain.PlanRecord) []byte {
	out := planPayload{
		Type:     p.Type,
		Title:    p.Title,
		Advice:   p.Advice,
		Events:   make([]payloadEvent, 0, len(p.Events)),
		Steps:    p.Steps,
		Deadline: p.Deadline,
	}
	for _, ev := range p.Events {
		out.Events = append(out.Events, payloadEvent(ev))
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return data
}

// newEventRow flattens a plan into the events table shape: the plan title
// plus the first event's interval.
func newEventRow(userID int64, rawText string, p domain.PlanRecord) repository.NewEvent {
	row := repository.NewEvent{
		UserID:      userID,
		RawText:     rawText,
		EventType:   p.Type,
		Title:       p.Title,
		Description: p.Advice,
		Payload:     encodePayload(p),
	}
	if first, ok := p.FirstEvent(); ok && !first.Synthetic {
		start, end := first.Start, first.End
		row.StartTime, row.EndTime = &start, &end
	}
	return row
}

// eventsFromHistory rebuilds chart events from stored rows, oldest first.
// Rows with a payload contribute all their events; older rows fall back to
// their own interval, or a synthetic slot when they have none.
func eventsFromHistory(rows []domain.StoredEvent) []domain.Event {
	var out []domain.Event
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if evs, ok := decodePayloadEvents(row.Payload); ok {
			out = append(out, evs...)
			continue
		}
		title := domain.CoalesceStr(row.Title, row.RawText, domain.PlaceholderText)
		switch {
		case row.StartTime != nil && row.EndTime != nil && !row.EndTime.Before(*row.StartTime):
			out = append(out, domain.Event{Title: title, Start: *row.StartTime, End: *row.EndTime})
		case row.StartTime != nil:
			out = append(out, domain.Event{Title: title, Start: *row.StartTime, End: row.StartTime.Add(time.Hour)})
		default:
			out = append(out, domain.Event{Title: title, Synthetic: true})
		}
	}
	return out
}

func decodePayloadEvents(raw []byte) ([]domain.Event, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var p planPayload
	if err := json.Unmarshal(raw, &p); err != nil || len(p.Events) == 0 {
		return nil, false
	}
	out := make([]domain.Event, 0, len(p.Events))
	for _, ev := range p.Events {
		out = append(out, domain.Event(ev))
	}
	return out, true
}
