package domain

import "strings"

// PlanType classifies what a user's message asked for. The set is closed:
// anything the reasoning service invents outside of it becomes PlanOther.
type PlanType string

const (
	PlanScheduleDay      PlanType = "schedule_day"
	PlanScheduleWeek     PlanType = "schedule_week"
	PlanScheduleMonth    PlanType = "schedule_month"
	PlanScheduleSemester PlanType = "schedule_semester"
	PlanScheduleYear     PlanType = "schedule_year"
	PlanGoal             PlanType = "goal_plan"
	PlanLessonHelp       PlanType = "lesson_help"
	PlanMeetingHelp      PlanType = "meeting_help"
	PlanOther            PlanType = "other"
)

var allPlanTypes = []PlanType{
	PlanScheduleDay,
	PlanScheduleWeek,
	PlanScheduleMonth,
	PlanScheduleSemester,
	PlanScheduleYear,
	PlanGoal,
	PlanLessonHelp,
	PlanMeetingHelp,
	PlanOther,
}

// AllPlanTypes returns the closed PlanType set in declaration order.
func AllPlanTypes() []PlanType {
	out := make([]PlanType, len(allPlanTypes))
	copy(out, allPlanTypes)
	return out
}

// Valid reports whether t is a member of the closed set.
func (t PlanType) Valid() bool {
	for _, known := range allPlanTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsSchedule reports whether t is one of the schedule_* types.
func (t PlanType) IsSchedule() bool {
	return strings.HasPrefix(string(t), "schedule_") && t.Valid()
}

// ParsePlanType normalizes case and surrounding whitespace, then coerces
// anything outside the closed set to PlanOther.
func ParsePlanType(s string) PlanType {
	t := PlanType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return PlanOther
}

// GraphType names one of the five chart shapes.
type GraphType string

const (
	GraphDay      GraphType = "day"
	GraphWeek     GraphType = "week"
	GraphMonth    GraphType = "month"
	GraphSemester GraphType = "semester"
	GraphYear     GraphType = "year"
)

// ValidGraphTypes is the canonical set of accepted graph type strings.
var ValidGraphTypes = map[string]bool{
	"day": true, "week": true, "month": true, "semester": true, "year": true,
}

// ScheduleType maps a graph type back to the schedule plan type that
// produces it, which is how history re-renders pick their chart.
func (g GraphType) ScheduleType() PlanType {
	switch g {
	case GraphWeek:
		return PlanScheduleWeek
	case GraphMonth:
		return PlanScheduleMonth
	case GraphSemester:
		return PlanScheduleSemester
	case GraphYear:
		return PlanScheduleYear
	default:
		return PlanScheduleDay
	}
}

// Source records whether a plan came from the reasoning service or from
// the deterministic fallback.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)
