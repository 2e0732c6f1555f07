package intelligence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/llm"
)

// ErrMalformedResponse is returned when a reply holds no parseable JSON object.
var ErrMalformedResponse = fmt.Errorf("malformed plan response: %w", llm.ErrInvalidOutput)

const (
	placeholderStep     = 108 * time.Minute // 1.8h
	placeholderDuration = 72 * time.Minute  // 1.2h
)

// SanitizePlan turns a raw model reply into a complete PlanRecord. Missing
// required fields get defaults, unknown types become "other", and events
// whose timestamps do not validate are replaced by placeholders laid out
// from midnight of now in loc. Only an unparseable reply is an error.
func SanitizePlan(raw string, now time.Time, loc *time.Location) (domain.PlanRecord, error) {
	if loc == nil {
		loc = time.Local
	}
	fields, err := llm.ExtractJSON[map[string]json.RawMessage](raw, nil)
	if err != nil {
		return domain.PlanRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	rec := domain.PlanRecord{
		Type:      domain.ParsePlanType(stringField(fields, "type")),
		Title:     domain.CoalesceStr(stringField(fields, "title"), domain.PlaceholderText),
		Advice:    domain.CoalesceStr(stringField(fields, "advice"), domain.PlaceholderText),
		Materials: stringList(fields["materials"]),
		Reminders: stringList(fields["reminders"]),
		Steps:     stringList(fields["steps"]),
		Geo:       optionalString(fields["geo"]),
		Deadline:  optionalString(fields["deadline"]),
		HelpText:  stringField(fields, "help_text"),
		Buttons:   buttonList(fields["buttons"]),
		Events:    sanitizeEvents(fields["events"], now.In(loc), loc),
	}
	if len(rec.Buttons) == 0 {
		rec.Buttons = []domain.Button{domain.RetryButton()}
	}
	return rec, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func optionalString(raw json.RawMessage) *string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}

// stringList accepts an array of scalars, a single string, or null.
// Objects inside the array contribute their title/text/step field.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		if s := strings.TrimSpace(single); s != "" {
			return []string{s}
		}
		return nil
	}
	var items []any
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := scalarText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		for _, key := range []string{"title", "text", "step", "name"} {
			if s, ok := x[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

type rawButton struct {
	Text     string `json:"text"`
	Callback string `json:"callback"`
	ActionID string `json:"action_id"`
}

func buttonList(raw json.RawMessage) []domain.Button {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]domain.Button, 0, len(items))
	for _, item := range items {
		var rb rawButton
		if json.Unmarshal(item, &rb) != nil {
			continue
		}
		text := strings.TrimSpace(rb.Text)
		action := domain.CoalesceStr(strings.TrimSpace(rb.ActionID), strings.TrimSpace(rb.Callback))
		if text == "" || action == "" {
			continue
		}
		out = append(out, domain.Button{Text: text, ActionID: action})
	}
	return out
}

// eventCandidate is one reply entry before validation.
type eventCandidate struct {
	Title    string
	StartRaw string
	EndRaw   string
	Color    string

	start time.Time
	end   time.Time
}

func (c *eventCandidate) validate(loc *time.Location) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StartRaw, validation.Required, validation.By(parseInto(loc, &c.start))),
		validation.Field(&c.EndRaw, validation.Required, validation.By(parseInto(loc, &c.end)), validation.By(c.notBeforeStart)),
	)
}

func parseInto(loc *time.Location, dst *time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		t, err := dateparse.ParseIn(s, loc)
		if err != nil {
			return errors.New("must be a parseable timestamp")
		}
		*dst = t
		return nil
	}
}

func (c *eventCandidate) notBeforeStart(interface{}) error {
	if c.end.Before(c.start) {
		return errors.New("must not be before start")
	}
	return nil
}

func decodeCandidate(raw json.RawMessage) eventCandidate {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return eventCandidate{}
	}
	return eventCandidate{
		Title:    stringField(fields, "title"),
		StartRaw: domain.CoalesceStr(stringField(fields, "start"), stringField(fields, "start_time")),
		EndRaw:   domain.CoalesceStr(stringField(fields, "end"), stringField(fields, "end_time")),
		Color:    stringField(fields, "color"),
	}
}

func sanitizeEvents(raw json.RawMessage, now time.Time, loc *time.Location) []domain.Event {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []domain.Event{}
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	out := make([]domain.Event, 0, len(items))
	for i, item := range items {
		c := decodeCandidate(item)
		color := validHex(c.Color)
		if err := c.validate(loc); err != nil {
			start := midnight.Add(time.Duration(i) * placeholderStep)
			out = append(out, domain.Event{
				Title:     domain.CoalesceStr(c.Title, fmt.Sprintf("Задача %d", i+1)),
				Start:     start,
				End:       start.Add(placeholderDuration),
				Color:     color,
				Synthetic: true,
			})
			continue
		}
		out = append(out, domain.Event{
			Title: domain.CoalesceStr(c.Title, fmt.Sprintf("Задача %d", i+1)),
			Start: c.start,
			End:   c.end,
			Color: color,
		})
	}
	return out
}

// validHex keeps s only when it is a #rgb or #rrggbb color.
func validHex(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := colorful.Hex(s); err != nil {
		return ""
	}
	return strings.ToUpper(s)
}
