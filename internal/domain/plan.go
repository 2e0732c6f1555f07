package domain

import "time"

const (
	// MaxRenderedEvents caps how many events any chart draws.
	MaxRenderedEvents = 30
	// MaxSemesterEvents is the tighter cap for the semester Gantt.
	MaxSemesterEvents = 25

	// PlaceholderText fills required text fields the reasoning service left out.
	PlaceholderText = "Не указано"
)

// Event is a titled time interval within a plan. End is never before Start.
// Synthetic events stand in for entries whose timestamps failed validation.
type Event struct {
	Title     string
	Start     time.Time
	End       time.Time
	Color     string
	Synthetic bool
}

// Duration returns End-Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Button is a suggested follow-up action.
type Button struct {
	Text     string `json:"text"`
	ActionID string `json:"action_id"`
}

// RetryButton is the single action attached to every fallback plan and to
// any plan that arrived without buttons.
func RetryButton() Button {
	return Button{Text: "Попробовать снова", ActionID: "retry"}
}

// PlanRecord is the validated result of classifying user text. Type, Title
// and Advice are always set and Buttons is never empty once a record leaves
// the sanitizer or the fallback.
type PlanRecord struct {
	Type      PlanType
	Title     string
	Advice    string
	Events    []Event
	Materials []string
	Reminders []string
	Geo       *string
	Buttons   []Button
	Steps     []string
	HelpText  string
	Deadline  *string
}

// FirstEvent returns the first event, if any.
func (p PlanRecord) FirstEvent() (Event, bool) {
	if len(p.Events) == 0 {
		return Event{}, false
	}
	return p.Events[0], true
}

// Clone returns a deep copy so callers can hand records across goroutines
// without sharing backing arrays.
func (p PlanRecord) Clone() PlanRecord {
	out := p
	out.Events = append([]Event(nil), p.Events...)
	out.Materials = append([]string(nil), p.Materials...)
	out.Reminders = append([]string(nil), p.Reminders...)
	out.Buttons = append([]Button(nil), p.Buttons...)
	out.Steps = append([]string(nil), p.Steps...)
	if p.Geo != nil {
		g := *p.Geo
		out.Geo = &g
	}
	if p.Deadline != nil {
		d := *p.Deadline
		out.Deadline = &d
	}
	return out
}

// RenderResult is an encoded chart plus the metadata the history table keeps.
type RenderResult struct {
	Image     []byte
	GraphType GraphType
	Title     string
}
