package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

func (e *Engine) drawSemester(c *canvas, events []domain.Event, now time.Time) {
	bars := SemesterBars(events, now)
	lo, hi := 0.0, 4.0
	for _, b := range bars {
		lo = math.Min(lo, math.Floor(b.Offset))
		hi = math.Max(hi, math.Ceil(b.End()))
	}

	area := rect{X: 300, Y: 110, W: c.w - 340, H: c.h - 220}
	c.gantt(area, bars, axis{lo: lo, hi: hi, px0: area.X, px1: area.right()}, func(b Bar) string {
		return fmt.Sprintf("%.1f нед.", b.Length)
	})
	c.text("Недели семестра", 22, false, c.theme.Text, area.X+area.W/2, area.bottom()+70, 0.5, 0.5)
}
