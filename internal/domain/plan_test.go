package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePlanType_KnownValues(t *testing.T) {
	for _, pt := range AllPlanTypes() {
		assert.Equal(t, pt, ParsePlanType(string(pt)))
	}
}

func TestParsePlanType_NormalizesCaseAndSpace(t *testing.T) {
	assert.Equal(t, PlanScheduleWeek, ParsePlanType("  Schedule_Week "))
	assert.Equal(t, PlanGoal, ParsePlanType("GOAL_PLAN"))
}

func TestParsePlanType_UnknownCoercedToOther(t *testing.T) {
	cases := []string{"", "schedule_decade", "lesson", "reminder", "null"}
	for _, s := range cases {
		assert.Equal(t, PlanOther, ParsePlanType(s), "input %q", s)
	}
}

func TestPlanType_IsSchedule(t *testing.T) {
	assert.True(t, PlanScheduleDay.IsSchedule())
	assert.True(t, PlanScheduleSemester.IsSchedule())
	assert.False(t, PlanGoal.IsSchedule())
	assert.False(t, PlanType("schedule_decade").IsSchedule())
}

func TestGraphType_ScheduleType(t *testing.T) {
	assert.Equal(t, PlanScheduleMonth, GraphMonth.ScheduleType())
	assert.Equal(t, PlanScheduleDay, GraphType("bogus").ScheduleType())
}

func TestPlanRecord_CloneIsDeep(t *testing.T) {
	geo := "https://maps.example/office"
	orig := PlanRecord{
		Type:    PlanMeetingHelp,
		Title:   "Встреча",
		Advice:  "Подготовь вопросы",
		Events:  []Event{{Title: "Встреча", Start: time.Now(), End: time.Now().Add(time.Hour)}},
		Buttons: []Button{RetryButton()},
		Geo:     &geo,
	}

	cp := orig.Clone()
	cp.Events[0].Title = "changed"
	cp.Buttons[0].Text = "changed"
	*cp.Geo = "changed"

	assert.Equal(t, "Встреча", orig.Events[0].Title)
	assert.Equal(t, "Попробовать снова", orig.Buttons[0].Text)
	assert.Equal(t, "https://maps.example/office", *orig.Geo)
}

func TestCoalesceStr(t *testing.T) {
	assert.Equal(t, "b", CoalesceStr("", "b", "c"))
	assert.Equal(t, "", CoalesceStr("", ""))
}
