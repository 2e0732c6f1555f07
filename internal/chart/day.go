package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

func (e *Engine) drawDay(c *canvas, events []domain.Event, now time.Time) {
	bars := DayBars(events, now)
	lo, hi := 0.0, 24.0
	for _, b := range bars {
		lo = math.Min(lo, math.Floor(b.Offset))
		hi = math.Max(hi, math.Ceil(b.End()))
	}

	area := rect{X: 300, Y: 110, W: c.w - 340, H: c.h - 220}
	c.gantt(area, bars, axis{lo: lo, hi: hi, px0: area.X, px1: area.right()}, func(b Bar) string {
		return fmt.Sprintf("%.1fч", b.Length)
	})
	c.text("Время суток (часы)", 22, false, c.theme.Text, area.X+area.W/2, area.bottom()+70, 0.5, 0.5)
	c.legend(area.right()-12, area.Y+12)
}

// gantt draws one horizontal bar per row, first bar at the top.
func (c *canvas) gantt(area rect, bars []Bar, x axis, label func(Bar) string) {
	c.panel(area)
	ticks := x.ticks(24)
	c.gridX(area, x, ticks)
	c.frame(area)
	for _, v := range ticks {
		c.text(formatTick(v), 16, false, c.theme.Text, x.at(v), area.bottom()+12, 0.5, 1)
	}

	row := area.H / float64(len(bars))
	barH := row * 0.68
	labelSize := math.Min(20, math.Max(11, row*0.45))
	for i, b := range bars {
		cy := area.Y + row*float64(i) + row/2
		x0, x1 := x.at(b.Offset), x.at(b.End())
		width := math.Max(x1-x0, 2)
		c.box(x0, cy-barH/2, width, barH, mustHex(b.Color), 2.5)
		c.text(truncateRunes(b.Label, 26), labelSize, false, c.theme.Text, area.X-12, cy, 1, 0.5)
		if label != nil {
			c.text(label(b), labelSize, true, c.theme.Title, x0+width/2, cy, 0.5, 0.5)
		}
	}
}
