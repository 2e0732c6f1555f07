package chart

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

var layoutNow = time.Date(2026, 2, 26, 15, 0, 0, 0, time.UTC)

func ev(title string, start time.Time, d time.Duration) domain.Event {
	return domain.Event{Title: title, Start: start, End: start.Add(d)}
}

func manyEvents(n int) []domain.Event {
	out := make([]domain.Event, n)
	for i := range out {
		out[i] = ev(fmt.Sprintf("Событие %d", i+1), layoutNow.Add(time.Duration(i)*time.Hour), time.Hour)
	}
	return out
}

func TestDayBars_HoursSinceMidnight(t *testing.T) {
	bars := DayBars([]domain.Event{
		ev("Физика", time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC), 90*time.Minute),
		ev("Встреча", time.Date(2026, 2, 27, 14, 0, 0, 0, time.UTC), time.Hour),
	}, layoutNow)

	require.Len(t, bars, 2)
	assert.InDelta(t, 10.0, bars[0].Offset, 1e-9)
	assert.InDelta(t, 1.5, bars[0].Length, 1e-9)
	assert.Equal(t, ColorLesson, bars[0].Color)
	assert.InDelta(t, 38.0, bars[1].Offset, 1e-9)
	assert.Equal(t, ColorMeeting, bars[1].Color)
}

func TestDayBars_SyntheticPlacement(t *testing.T) {
	events := []domain.Event{
		ev("a", layoutNow, time.Hour),
		{Title: "", Synthetic: true},
		{Title: "c", Synthetic: true},
	}
	bars := DayBars(events, layoutNow)
	assert.InDelta(t, 3.6, bars[2].Offset, 1e-9)
	assert.InDelta(t, 1.2, bars[2].Length, 1e-9)
	assert.Equal(t, "Задача 2", bars[1].Label)
	assert.True(t, bars[1].Synthetic)
}

func TestDayBars_TruncatesToThirty(t *testing.T) {
	assert.Len(t, DayBars(manyEvents(45), layoutNow), domain.MaxRenderedEvents)
}

func TestSemesterBars_WeeksSinceNowCappedAt25(t *testing.T) {
	bars := SemesterBars(manyEvents(40), layoutNow)
	assert.Len(t, bars, domain.MaxSemesterEvents)

	bars = SemesterBars([]domain.Event{
		ev("Сессия", layoutNow.Add(14*24*time.Hour), 7*24*time.Hour),
		{Title: "x", Synthetic: true},
	}, layoutNow)
	assert.InDelta(t, 2.0, bars[0].Offset, 1e-9)
	assert.InDelta(t, 1.0, bars[0].Length, 1e-9)
	assert.InDelta(t, 1.0, bars[1].Offset, 1e-9)
	assert.InDelta(t, 2.0, bars[1].Length, 1e-9)
}

func TestWeekGrid_CountsByWeekdayAndHour(t *testing.T) {
	monday9 := time.Date(2026, 2, 23, 9, 30, 0, 0, time.UTC)
	sunday23 := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	events := []domain.Event{
		ev("a", monday9, time.Hour),
		ev("b", monday9, time.Hour),
		ev("c", sunday23, time.Hour),
		ev("early", time.Date(2026, 2, 24, 5, 0, 0, 0, time.UTC), time.Hour),
		ev("midnight", time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC), time.Hour),
		{Title: "synthetic", Start: monday9, End: monday9, Synthetic: true},
	}

	grid := WeekGrid(events)

	assert.Equal(t, 2, grid[9-WeekFirstHour][0])
	assert.Equal(t, 1, grid[23-WeekFirstHour][6])
	total := 0
	for _, row := range grid {
		for _, n := range row {
			total += n
		}
	}
	assert.Equal(t, 3, total)
}

func TestMonthCounts_ZeroFilled(t *testing.T) {
	day := func(d int) domain.Event {
		return ev("x", time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC), time.Hour)
	}
	counts := MonthCounts([]domain.Event{day(5), day(5), day(20)})

	for d := 1; d <= 31; d++ {
		switch d {
		case 5:
			assert.Equal(t, 2, counts[d-1])
		case 20:
			assert.Equal(t, 1, counts[d-1])
		default:
			assert.Equal(t, 0, counts[d-1], "day %d", d)
		}
	}
}

func TestYearProgress_MonotonicAndClipped(t *testing.T) {
	now := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	events := []domain.Event{
		ev("1", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), time.Hour),
		ev("2", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), time.Hour),
		ev("3", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), time.Hour),
		ev("4", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), time.Hour),
	}

	p := YearProgress(events, now)

	assert.InDelta(t, 25, p[0], 1e-9)
	assert.InDelta(t, 25, p[1], 1e-9)
	assert.InDelta(t, 50, p[2], 1e-9)
	assert.InDelta(t, 75, p[6], 1e-9)
	assert.InDelta(t, 75, p[11], 1e-9, "future steps are not done yet")
	for i := 1; i < 12; i++ {
		assert.GreaterOrEqual(t, p[i], p[i-1])
		assert.LessOrEqual(t, p[i], 100.0)
	}
}

func TestYearProgress_PastYearComplete(t *testing.T) {
	now := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	p := YearProgress([]domain.Event{ev("old", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), time.Hour)}, now)
	assert.InDelta(t, 100, p[0], 1e-9)
	assert.InDelta(t, 100, p[11], 1e-9)
}

func TestYearProgress_EmptyAndSynthetic(t *testing.T) {
	assert.Equal(t, [12]float64{}, YearProgress(nil, layoutNow))
	p := YearProgress([]domain.Event{{Title: "x", Synthetic: true}}, layoutNow)
	assert.Equal(t, 0.0, p[11])
}

func TestAxisTicks(t *testing.T) {
	a := axis{lo: 0, hi: 24, px0: 0, px1: 240}
	assert.Len(t, a.ticks(24), 25)
	assert.InDelta(t, 120.0, a.at(12), 1e-9)

	wide := axis{lo: 0, hi: 48}
	assert.Equal(t, []float64{0, 2, 4}, wide.ticks(24)[:3])
}
