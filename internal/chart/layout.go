package chart

import (
	"fmt"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const (
	// WeekFirstHour is the first hour row of the week heatmap.
	WeekFirstHour = 6
	// WeekHours is the number of hour rows (06:00 through 23:00).
	WeekHours = 18

	week = 7 * 24 * time.Hour

	dayPlaceholderStep     = 1.8
	dayPlaceholderLength   = 1.2
	semesterPlaceholderLen = 2.0
)

// Bar is one horizontal interval of a Gantt chart, in chart units.
type Bar struct {
	Label     string
	Offset    float64
	Length    float64
	Color     string
	Synthetic bool
}

// End is Offset+Length.
func (b Bar) End() float64 { return b.Offset + b.Length }

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func truncateEvents(events []domain.Event, n int) []domain.Event {
	if len(events) > n {
		return events[:n]
	}
	return events
}

func barLabel(title, fallback string, i int) string {
	if title == "" || title == domain.PlaceholderText {
		return fmt.Sprintf("%s %d", fallback, i+1)
	}
	return title
}

// DayBars places events in hours since midnight of now. Synthetic events
// are laid out at i×1.8h with a 1.2h span.
func DayBars(events []domain.Event, now time.Time) []Bar {
	events = truncateEvents(events, domain.MaxRenderedEvents)
	base := midnight(now)
	out := make([]Bar, 0, len(events))
	for i, ev := range events {
		b := Bar{
			Label:     barLabel(ev.Title, "Задача", i),
			Color:     ResolveColor(ev),
			Synthetic: ev.Synthetic,
		}
		if ev.Synthetic {
			b.Offset = float64(i) * dayPlaceholderStep
			b.Length = dayPlaceholderLength
		} else {
			b.Offset = ev.Start.Sub(base).Hours()
			b.Length = ev.Duration().Hours()
		}
		out = append(out, b)
	}
	return out
}

// SemesterBars places events in weeks since now, capped at
// MaxSemesterEvents. Synthetic events start i weeks out and last two.
func SemesterBars(events []domain.Event, now time.Time) []Bar {
	events = truncateEvents(events, domain.MaxSemesterEvents)
	out := make([]Bar, 0, len(events))
	for i, ev := range events {
		b := Bar{
			Label:     barLabel(ev.Title, "Неделя", i),
			Color:     ResolveColor(ev),
			Synthetic: ev.Synthetic,
		}
		if ev.Synthetic {
			b.Offset = float64(i)
			b.Length = semesterPlaceholderLen
		} else {
			b.Offset = float64(ev.Start.Sub(now)) / float64(week)
			b.Length = float64(ev.Duration()) / float64(week)
		}
		out = append(out, b)
	}
	return out
}

// WeekGrid counts event starts per hour row (06..23) and weekday column
// (Monday first). Starts outside those hours and synthetic events are not
// counted.
func WeekGrid(events []domain.Event) [WeekHours][7]int {
	var grid [WeekHours][7]int
	for _, ev := range truncateEvents(events, domain.MaxRenderedEvents) {
		if ev.Synthetic {
			continue
		}
		row := ev.Start.Hour() - WeekFirstHour
		if row < 0 || row >= WeekHours {
			continue
		}
		col := (int(ev.Start.Weekday()) + 6) % 7
		grid[row][col]++
	}
	return grid
}

// MonthCounts counts events per calendar day; index 0 is day 1. Days
// without events stay zero.
func MonthCounts(events []domain.Event) [31]int {
	var counts [31]int
	for _, ev := range truncateEvents(events, domain.MaxRenderedEvents) {
		if ev.Synthetic {
			continue
		}
		counts[ev.Start.Day()-1]++
	}
	return counts
}

// YearProgress returns cumulative percent complete at the end of each month
// of now's year. Every event is a step that counts as done once it has
// ended, and nothing ends after now. Synthetic events have no real date
// and never count as done. Values never decrease and stay in [0, 100].
func YearProgress(events []domain.Event, now time.Time) [12]float64 {
	var progress [12]float64
	events = truncateEvents(events, domain.MaxRenderedEvents)
	if len(events) == 0 {
		return progress
	}
	total := float64(len(events))
	prev := 0.0
	for m := 0; m < 12; m++ {
		cutoff := time.Date(now.Year(), time.Month(m+2), 1, 0, 0, 0, 0, now.Location())
		if now.Before(cutoff) {
			cutoff = now
		}
		done := 0
		for _, ev := range events {
			if !ev.Synthetic && !ev.End.After(cutoff) {
				done++
			}
		}
		v := clamp(100*float64(done)/total, prev, 100)
		progress[m] = v
		prev = v
	}
	return progress
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
